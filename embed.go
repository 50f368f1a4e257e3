package main

import "embed"

// Pages bundled into the binary; --config overrides them at run time.
//
//go:embed data/pages
var dataFS embed.FS
