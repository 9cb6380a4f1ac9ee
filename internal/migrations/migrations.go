// Package migrations embeds the goose SQL migrations for the metadata
// database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
