// Package views embeds the HTML templates of the console
package views

import "embed"

// FS holds the layout and page templates
//
//go:embed layouts/*.html pages/*.html
var FS embed.FS
