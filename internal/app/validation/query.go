package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/sifan077/CharacterVault/internal/app/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

// ListQuery is the normalized pagination query for GET /collection.
type ListQuery struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// ParseListQuery validates raw page/limit query values, applying defaults when absent.
func (val *Validator) ParseListQuery(rawPage, rawLimit string) (ListQuery, error) {
	var messages []string

	page, msg := parseIntParam(rawPage, "Page", DefaultPage)
	if msg != "" {
		messages = append(messages, msg)
	}
	limit, msg := parseIntParam(rawLimit, "Limit", DefaultLimit)
	if msg != "" {
		messages = append(messages, msg)
	}

	// Unparseable values fall back to defaults, so only parsed values reach the range rules.
	q := ListQuery{Page: page, Limit: limit}
	messages = append(messages, val.collect(&q)...)

	if len(messages) > 0 {
		return ListQuery{}, apperr.NewValidationError(messages)
	}
	return q, nil
}

func parseIntParam(raw, label string, def int) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def, label + " must be a number"
	}
	if f != math.Trunc(f) {
		return def, label + " must be an integer"
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return def, label + " must be a safe number"
	}
	return int(f), ""
}
