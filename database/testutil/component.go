package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cybercog/ban/component"
	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/testutil"
)

// FileName is the sqlite file created inside the component's directory.
const FileName = "testing.sqlite"

// Component is a test database component backed by a sqlite file.
type Component struct {
	dir     string
	log     *logger.Logger
	models  []interface{}
	db      *database.DB
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
	_ database.Source        = (*Component)(nil)
)

// NewComponent creates a test database stored in dir.
func NewComponent(dir string) *Component {
	return &Component{dir: dir, log: logger.NewNop()}
}

// WithLogger routes GORM output to log.
func (c *Component) WithLogger(log *logger.Logger) *Component {
	c.log = log
	return c
}

// WithModels registers models for auto-migration on Start.
func (c *Component) WithModels(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// Path is the sqlite file path.
func (c *Component) Path() string {
	return filepath.Join(c.dir, FileName)
}

// DB returns the underlying *gorm.DB, or nil if not started.
func (c *Component) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil
	}
	return c.db.GormDB
}

// Gorm is DB under the database.Source name.
func (c *Component) Gorm() *gorm.DB { return c.DB() }

// Name returns the component name.
func (c *Component) Name() string {
	return "database-test"
}

// Start opens the sqlite file, creating it if needed.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}

	cfg := database.Config{
		Driver:   database.DriverSQLite,
		DSN:      c.Path() + "?_foreign_keys=on&_busy_timeout=5000",
		LogLevel: "error",
	}
	db, err := database.New(ctx, sqlite.Open(cfg.DSN), cfg, c.log)
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}

	if len(c.models) > 0 {
		if err := db.GormDB.AutoMigrate(c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
	}

	c.db = db
	c.started = true
	return nil
}

// Stop closes the database connection. The file is left in place.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.db == nil {
		return nil
	}
	c.started = false
	err := c.db.Close()
	c.db = nil
	return err
}

// Health returns the health status of the test database.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started || c.db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not started",
		}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe reports the database file.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "Test database", Type: "testing-database", Details: "sqlite " + c.Path()}
}

// dataTables lists tables holding data. Migration tracking tables are
// schema state and are excluded.
func dataTables(db *gorm.DB) ([]string, error) {
	tables, err := GetTableNames(db)
	if err != nil {
		return nil, err
	}
	result := tables[:0]
	for _, table := range tables {
		if !strings.HasSuffix(table, "_migrations") {
			result = append(result, table)
		}
	}
	return result, nil
}

// Reset clears all data while preserving the schema and migration state.
func (c *Component) Reset(ctx context.Context) error {
	db := c.DB()
	if db == nil {
		return fmt.Errorf("component not started")
	}
	db = db.WithContext(ctx)

	tables, err := dataTables(db)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	for _, table := range tables {
		if err := TruncateTable(db, table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Snapshot captures the rows of every data table.
func (c *Component) Snapshot(ctx context.Context) (interface{}, error) {
	db := c.DB()
	if db == nil {
		return nil, fmt.Errorf("component not started")
	}
	db = db.WithContext(ctx)

	tables, err := dataTables(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	snapshot := make(map[string][]map[string]interface{}, len(tables))
	for _, table := range tables {
		var rows []map[string]interface{}
		if err := db.Table(table).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to snapshot table %s: %w", table, err)
		}
		snapshot[table] = rows
	}
	return snapshot, nil
}

// Restore returns the database to a snapshot taken by Snapshot.
func (c *Component) Restore(ctx context.Context, snap interface{}) error {
	db := c.DB()
	if db == nil {
		return fmt.Errorf("component not started")
	}

	snapshot, ok := snap.(map[string][]map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string][]map[string]interface{}, got %T", snap)
	}

	if err := c.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset before restore: %w", err)
	}
	for table, rows := range snapshot {
		if err := LoadFixture(db.WithContext(ctx), table, rows); err != nil {
			return err
		}
	}
	return nil
}
