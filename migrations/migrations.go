// Package migrations embeds the SQL for the postgres key-value backend.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
