package database

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/cybercog/ban/component"
	"github.com/cybercog/ban/di"
	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/logger"
)

// Source is implemented by components that own a GORM connection.
type Source interface {
	Name() string
	// Gorm returns the connection, or nil before the component has started.
	Gorm() *gorm.DB
}

// Register binds src's connection under di.Keys.Database. Resolving the
// binding before src has started fails without caching the failure.
func Register(c di.Container, src Source) error {
	return c.RegisterLazy(di.Keys.Database, func() (*gorm.DB, error) {
		db := src.Gorm()
		if db == nil {
			return nil, errors.NotConfigured(fmt.Sprintf("database %s (component not started)", src.Name()))
		}
		return db, nil
	})
}

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	cfg    Config
	log    *logger.Logger
	driver DriverFunc
	db     *DB
	mu     sync.RWMutex
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
	_ Source                = (*Component)(nil)
)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithDriver overrides the dialector built from Config.Driver.
func (c *Component) WithDriver(fn DriverFunc) *Component {
	c.driver = fn
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Gorm returns the GORM handle, or nil if not started.
func (c *Component) Gorm() *gorm.DB {
	if db := c.DB(); db != nil {
		return db.GormDB
	}
	return nil
}

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start validates the configuration and connects.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	driver := c.driver
	if driver == nil {
		var err error
		if driver, err = DriverFor(c.cfg.Driver); err != nil {
			return err
		}
	}

	db, err := New(ctx, driver(c.cfg.DSN), c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()
	return nil
}

// Stop closes the database connection.
func (c *Component) Stop(_ context.Context) error {
	db := c.DB()
	if db == nil {
		return nil
	}
	return db.Close()
}

// Health returns the current health status of the database.
func (c *Component) Health(ctx context.Context) component.Health {
	db := c.DB()
	if db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}

	if status := db.CheckHealth(ctx); !status.Connected {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %s", status.Error),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the driver and pool settings.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Database",
		Type:    "database",
		Details: fmt.Sprintf("%s %s pool=%d/%d", c.cfg.Driver, c.cfg.DSN, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns),
	}
}
