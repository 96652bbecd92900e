package assets

import "embed"

// FS contains the static assets served under /assets/.
//
//go:embed css
var FS embed.FS
