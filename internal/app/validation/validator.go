package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/model"
)

// Validator enforces the request-shape contracts of the collection API.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom URL rule registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("http_or_https", validateHTTPURL); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// ValidateCreate trims the request in place and reports every violation at once.
func (val *Validator) ValidateCreate(req *model.CreateCharacterRequest) error {
	if req == nil {
		return apperr.NewValidationError([]string{"Request body is required"})
	}
	normalize(req)

	messages := val.collect(req)
	if len(messages) > 0 {
		return apperr.NewValidationError(messages)
	}
	return nil
}

func (val *Validator) collect(s any) []string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, messageFor(fe))
	}
	return messages
}

func normalize(req *model.CreateCharacterRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Species = strings.TrimSpace(req.Species)
	req.Type = strings.TrimSpace(req.Type)
	if req.Origin != nil {
		req.Origin.Name = strings.TrimSpace(req.Origin.Name)
	}
	if req.Location != nil {
		req.Location.Name = strings.TrimSpace(req.Location.Name)
	}
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	return IsHTTPURL(fl.Field().String())
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

var indexSuffix = regexp.MustCompile(`\[\d+\]`)

var labels = map[string]string{
	"name":          "Name",
	"status":        "Status",
	"species":       "Species",
	"type":          "Type",
	"gender":        "Gender",
	"origin":        "Origin",
	"origin.name":   "Origin name",
	"origin.url":    "Origin URL",
	"location":      "Location",
	"location.name": "Location name",
	"location.url":  "Location URL",
	"image":         "Image",
	"episode":       "Episode",
	"page":          "Page",
	"limit":         "Limit",
}

// fieldPath turns "CreateCharacterRequest.origin.name" into "origin.name"
// and drops slice indexes.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexSuffix.ReplaceAllString(namespace, "")
}

func labelFor(path string) string {
	if l, ok := labels[path]; ok {
		return l
	}
	return path
}

func messageFor(fe validator.FieldError) string {
	path := fieldPath(fe.Namespace())
	label := labelFor(path)

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be less than %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "http_or_https":
		if path == "episode" {
			return "Episode URLs must be valid HTTP/HTTPS URLs"
		}
		return label + " must be a valid HTTP/HTTPS URL"
	default:
		return fmt.Sprintf("%s failed the %s rule", label, fe.Tag())
	}
}
