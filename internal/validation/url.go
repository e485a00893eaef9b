package validation

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var webURLPattern = regexp.MustCompile(`(?i)^(?:` +
	`https?://(?:www\.)?[a-z0-9][a-z0-9-]+[a-z0-9]\.\S{2,}` +
	`|www\.[a-z0-9][a-z0-9-]+[a-z0-9]\.\S{2,}` +
	`|https?://[a-z0-9]+\.\S{2,}` +
	`|[a-z0-9]+\.\S{2,}` +
	`)$`)

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
	"svg":  {},
}

// LooksLikeWebURL reports whether raw is a conventional web address, with or
// without a scheme.
func LooksLikeWebURL(raw string) bool {
	return raw != "" && webURLPattern.MatchString(raw)
}

// HasImageExtension reports whether the path of raw ends in a known image
// extension. Query strings and fragments are ignored.
func HasImageExtension(raw string) bool {
	u, err := url.Parse(ProbeTarget(raw))
	if err != nil {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	_, ok := imageExtensions[ext]
	return ok
}

// ProbeTarget returns the address that is actually fetched for raw.
// Scheme-less values are fetched over https.
func ProbeTarget(raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}
