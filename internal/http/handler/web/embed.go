package web

import "embed"

//go:embed templates/*.tmpl
var Templates embed.FS

//go:embed assets
var Assets embed.FS
