package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidImageURL(t *testing.T) {
	valid := []string{
		"https://rickandmortyapi.com/api/character/avatar/1.jpeg",
		"http://example.com/a.JPG",
		"https://example.com/a.webp?size=large",
		"https://example.com/path/b.gif#frag",
	}
	for _, raw := range valid {
		assert.True(t, IsValidImageURL(raw), raw)
	}

	invalid := []string{
		"https://example.com/image",
		"https://example.com/image.bmp",
		"ftp://example.com/a.png",
		"example.com/a.png",
		"",
	}
	for _, raw := range invalid {
		assert.False(t, IsValidImageURL(raw), raw)
	}
}
