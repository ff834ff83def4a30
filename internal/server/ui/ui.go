// Package ui embeds the papersort web interface.
package ui

import _ "embed"

//go:embed index.html
var IndexHTML []byte
