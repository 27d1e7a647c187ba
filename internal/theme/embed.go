package theme

import "embed"

// EmbeddedThemes ships the built-in theme files.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
