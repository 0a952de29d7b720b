package static

import "embed"

// FS exposes the page script for HTTP serving.
//
//go:embed *.js
var FS embed.FS
