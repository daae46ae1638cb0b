package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/model"
)

// DecodeCreate parses and validates a create payload. Unknown fields are ignored.
func (val *Validator) DecodeCreate(body []byte) (*model.CreateCharacterRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var req model.CreateCharacterRequest
	var typeMessage, typePath string
	if err := json.Unmarshal(body, &req); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, &apperr.InvalidJSONError{Err: err}
		case errors.As(err, &typeErr):
			if typeErr.Field == "" {
				return nil, apperr.NewValidationError([]string{"Request body must be an object"})
			}
			typePath = indexSuffix.ReplaceAllString(typeErr.Field, "")
			typeMessage = labelFor(typePath) + " must be " + describeKind(typeErr.Type)
		default:
			return nil, &apperr.InvalidJSONError{Err: err}
		}
	}

	err := val.ValidateCreate(&req)
	if typeMessage == "" {
		if err != nil {
			return nil, err
		}
		return &req, nil
	}

	// The mistyped field was skipped by the decoder; report the type problem
	// instead of a second "is required" for the same field.
	messages := []string{typeMessage}
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		for _, m := range validationErr.Errors {
			if !sameField(m, typePath) {
				messages = append(messages, m)
			}
		}
	}
	return nil, apperr.NewValidationError(messages)
}

func sameField(message, path string) bool {
	label := labelFor(path)
	return len(message) > len(label) && message[:len(label)+1] == label+" "
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Ptr, reflect.Map:
		return "an object"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Float64, reflect.Uint:
		return "a number"
	default:
		return "a valid " + t.Kind().String()
	}
}
