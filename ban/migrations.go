package ban

import (
	"embed"

	"github.com/cybercog/ban/database/migration"
)

// PublishTag groups the migration templates for vendor:publish.
const PublishTag = "ban-migrations"

// MigrationsDir is the directory of the templates inside Migrations.
const MigrationsDir = "migrations"

// Migrations holds the schema templates of the package.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationSet runs the templates straight from the embedded files,
// without publishing them first.
func MigrationSet(table string) migration.Set {
	return migration.Set{
		Name:  "ban",
		FS:    Migrations,
		Dir:   MigrationsDir,
		Table: table,
	}
}
