// Package migrations holds the goose schema for the local state database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
