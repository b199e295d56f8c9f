package templates

import "embed"

//go:embed base.html pages partials
var FS embed.FS
