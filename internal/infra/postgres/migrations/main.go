package migrations

import "github.com/uptrace/bun/migrate"

// Migrations registers schema changes; each file's name carries its version.
var Migrations = migrate.NewMigrations()
