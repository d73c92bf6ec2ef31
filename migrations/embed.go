// Package migrations holds the goose SQL migrations for the relational stores.
package migrations

import "embed"

// FS contains one directory per dialect: postgres/ and sqlite/.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
