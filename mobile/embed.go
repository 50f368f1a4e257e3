//go:build mobile

package mobile

import "embed"

// go:embed cannot reach outside this directory, so data/pages is copied
// next to this file before a mobile build:
//
//	cp -r data mobile/
//
//go:embed data/pages
var dataFS embed.FS
