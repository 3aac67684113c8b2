// Package database provides a GORM-based database component with connection
// pooling, health checks, transactions and error translation.
//
// The component defaults to the sqlite driver; other drivers are plugged in
// with WithDriver:
//
//	db := database.NewComponent(database.Config{DSN: "ban.sqlite"}, log)
//	app, _ := bootstrap.New(cfg, bootstrap.WithComponents(db))
//	_ = database.Register(app.Container, db)
//
// Register binds the *gorm.DB under di.Keys.Database. The binding resolves
// once the component has started.
//
// # Subpackages
//
//   - migration: file-based migrations using golang-migrate
//   - testutil: sqlite test database and fixture helpers
package database
