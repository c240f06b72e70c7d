// Package web holds the embedded browser assets for the results page.
package web

import _ "embed"

// IndexPage is the card-grid results page served at the root path.
//
//go:embed index.html
var IndexPage []byte
