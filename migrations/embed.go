package migrations

import "embed"

// MigrationsFS holds the SQL migration files compiled into the binary.
//
//go:embed *.sql
var MigrationsFS embed.FS
