package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeWebURL(t *testing.T) {
	valid := []string{
		"https://example.com/pic.png",
		"http://www.example.com/a.jpg",
		"www.example.com/a.jpg",
		"example.com/a.jpg",
		"HTTPS://CDN.EXAMPLE.COM/A.PNG",
		"https://a.io/x.gif",
	}
	for _, raw := range valid {
		assert.True(t, LooksLikeWebURL(raw), raw)
	}
	invalid := []string{"", "pic", "ftp://example.com/a.png", "https://example .com/a.png", "a."}
	for _, raw := range invalid {
		assert.False(t, LooksLikeWebURL(raw), raw)
	}
}

func TestHasImageExtension(t *testing.T) {
	assert.True(t, HasImageExtension("https://example.com/pic.PNG"))
	assert.True(t, HasImageExtension("https://example.com/pic.webp?size=large#top"))
	assert.True(t, HasImageExtension("example.com/logo.svg"))
	assert.False(t, HasImageExtension("https://example.com/notes.txt"))
	assert.False(t, HasImageExtension("https://example.com/png"))
}

func TestProbeTarget(t *testing.T) {
	assert.Equal(t, "https://example.com/a.png", ProbeTarget("example.com/a.png"))
	assert.Equal(t, "http://example.com/a.png", ProbeTarget("http://example.com/a.png"))
}

func TestCheckValidity(t *testing.T) {
	fields := DefaultFields()
	name, price, image := fields[0], fields[1], fields[2]

	assert.Equal(t, Validity{ValueMissing: true}, CheckValidity(name, ""))
	assert.Equal(t, Validity{TooShort: true}, CheckValidity(name, "ab"))
	assert.Equal(t, Validity{PatternMismatch: true}, CheckValidity(name, "abc#"))
	assert.Equal(t, Validity{TypeMismatch: true}, CheckValidity(price, "twelve"))
	assert.Equal(t, Validity{TooShort: true}, CheckValidity(price, "0"))
	assert.Equal(t, Validity{}, CheckValidity(price, " 3.50 "))
	assert.Equal(t, Validity{TypeMismatch: true}, CheckValidity(image, "example.com/a.png"))
	assert.Equal(t, Validity{}, CheckValidity(image, "https://example.com/a.png"))
}
