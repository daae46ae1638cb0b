package validation

import (
	"net/url"
	"path"
	"strings"
)

// ImageExtensions lists the file suffixes accepted for character portraits.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// IsValidImageURL reports whether raw is an http(s) URL whose path names an image file.
func IsValidImageURL(raw string) bool {
	if !IsHTTPURL(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
