package migration

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/cybercog/ban/logger"
)

// DriverFunc creates a migrate database driver tracking progress in table.
type DriverFunc func(db *sql.DB, table string) (database.Driver, error)

// SQLite is the DriverFunc for sqlite databases.
func SQLite(db *sql.DB, table string) (database.Driver, error) {
	return sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: table})
}

// Option configures a Runner.
type Option func(*Runner)

// WithDriver sets the DriverFunc. Defaults to SQLite.
func WithDriver(fn DriverFunc) Option {
	return func(r *Runner) { r.driver = fn }
}

// Runner applies migration sets to one database.
type Runner struct {
	db     *sql.DB
	driver DriverFunc
	log    *logger.Logger
}

// NewRunner creates a runner over the connection pool of gormDB.
func NewRunner(gormDB *gorm.DB, log *logger.Logger, opts ...Option) (*Runner, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	r := &Runner{db: sqlDB, driver: SQLite, log: log.WithComponent("migration")}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Status is the state of one migration file.
type Status struct {
	File
	Applied bool
	Dirty   bool
}

// Up applies every pending migration of set in version order and returns
// the files applied. A set without migrations is a no-op.
func (r *Runner) Up(ctx context.Context, set Set) ([]File, error) {
	if err := set.validate(); err != nil {
		return nil, err
	}
	if set.empty() {
		r.log.Debug("No migrations to apply", logger.Fields("set", set.Name))
		return nil, nil
	}

	files, err := set.files()
	if err != nil {
		return nil, newError(set, 0, "", err)
	}

	m, err := r.migrator(set)
	if err != nil {
		return nil, newError(set, 0, "", err)
	}
	before, _, err := version(m)
	if err != nil {
		return nil, r.failure(m, set, files, err)
	}

	start := time.Now()
	if err := r.run(ctx, m, m.Up); err != nil {
		return nil, r.failure(m, set, files, err)
	}
	after, _, err := version(m)
	if err != nil {
		return nil, newError(set, 0, "", err)
	}

	applied := make([]File, 0, len(files))
	for _, f := range files {
		if f.Version > before && f.Version <= after {
			applied = append(applied, f)
		}
	}

	fields := logger.DurationFields("migrate", time.Since(start))
	fields["set"] = set.Name
	fields["applied"] = len(applied)
	fields[logger.FieldVersion] = after
	r.log.Info("Migrations applied", fields)
	return applied, nil
}

// Down rolls back every applied migration of set.
func (r *Runner) Down(ctx context.Context, set Set) error {
	if err := set.validate(); err != nil {
		return err
	}
	if set.empty() {
		return nil
	}

	files, err := set.files()
	if err != nil {
		return newError(set, 0, "", err)
	}
	m, err := r.migrator(set)
	if err != nil {
		return newError(set, 0, "", err)
	}
	if err := r.run(ctx, m, m.Down); err != nil {
		return r.failure(m, set, files, err)
	}

	r.log.Info("Migrations rolled back", logger.Fields("set", set.Name))
	return nil
}

// Version returns the latest applied version of set and whether it is dirty.
// Zero means nothing has been applied.
func (r *Runner) Version(set Set) (uint, bool, error) {
	if err := set.validate(); err != nil {
		return 0, false, err
	}
	drv, err := r.driver(r.db, set.Table)
	if err != nil {
		return 0, false, newError(set, 0, "", err)
	}
	v, dirty, err := drv.Version()
	if err != nil {
		return 0, false, newError(set, 0, "", err)
	}
	if v == database.NilVersion {
		return 0, false, nil
	}
	return uint(v), dirty, nil
}

// Files lists the migrations of set in version order.
func (r *Runner) Files(set Set) ([]File, error) {
	if err := set.validate(); err != nil {
		return nil, err
	}
	if set.empty() {
		return nil, nil
	}
	return set.files()
}

// Status reports which migrations of set have been applied.
func (r *Runner) Status(set Set) ([]Status, error) {
	files, err := r.Files(set)
	if err != nil {
		return nil, err
	}
	current, dirty, err := r.Version(set)
	if err != nil {
		return nil, err
	}

	result := make([]Status, 0, len(files))
	for _, f := range files {
		s := Status{File: f, Applied: f.Version <= current && current != 0}
		if f.Version == current && dirty {
			s.Applied = false
			s.Dirty = true
		}
		result = append(result, s)
	}
	return result, nil
}

func (r *Runner) migrator(set Set) (*migrate.Migrate, error) {
	src, err := iofs.New(set.FS, set.dir())
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	drv, err := r.driver(r.db, set.Table)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, set.Table, drv)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// run executes step, asking migrate to stop between migrations once ctx is done.
func (r *Runner) run(ctx context.Context, m *migrate.Migrate, step func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	err := step()
	if stderrors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err == nil {
		return ctx.Err()
	}
	return err
}

// failure identifies the migration that left the set dirty.
func (r *Runner) failure(m *migrate.Migrate, set Set, files []File, cause error) error {
	var v uint
	var dirtyErr migrate.ErrDirty
	if stderrors.As(cause, &dirtyErr) {
		v = uint(dirtyErr.Version)
	} else if current, dirty, err := m.Version(); err == nil && dirty {
		v = current
	}

	file := ""
	for _, f := range files {
		if f.Version == v {
			file = f.Name()
		}
	}

	r.log.Error("Migration failed", logger.Fields(
		"set", set.Name,
		logger.FieldVersion, v,
		logger.FieldPath, file,
		logger.FieldError, cause.Error(),
	))
	return newError(set, v, file, cause)
}

func version(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if stderrors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
