// Package migration applies file-based schema migrations with
// golang-migrate.
//
// A Set names a directory of VERSION_name.up.sql / VERSION_name.down.sql
// files inside any fs.FS and the table that tracks its progress. Several
// sets can share one database as long as their tables differ:
//
//	//go:embed database/migrations/*.sql
//	var fixtures embed.FS
//
//	runner, err := migration.NewRunner(gormDB, log)
//	applied, err := runner.Up(ctx, migration.Set{
//	    Name:  "fixtures",
//	    FS:    fixtures,
//	    Dir:   "database/migrations",
//	    Table: "fixture_migrations",
//	})
//
// Migration instances are never closed: closing would close the shared
// sql.DB owned by the database component.
package migration
