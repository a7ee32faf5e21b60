// Package web carries the server-rendered templates for the public pages.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
