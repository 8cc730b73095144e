// Package webassets embeds the chart page template and its static files.
package webassets

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static/*
var Static embed.FS
