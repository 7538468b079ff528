// Package migrations holds the goose SQL migration files, embedded so
// the binary carries its own schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
