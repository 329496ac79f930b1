// Package migrations holds the PostgreSQL schema. Files are applied in name
// order by database.Migrate, at server start-up and in integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
