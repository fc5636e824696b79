// Package migrations embeds the goose SQL migrations so the binary and the
// test suite share a single schema source.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
