package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cybercog/ban/logger"
)

// DriverFunc builds a GORM dialector from a DSN.
type DriverFunc func(dsn string) gorm.Dialector

// DriverFor returns the bundled DriverFunc for name.
func DriverFor(name string) (DriverFunc, error) {
	switch name {
	case "", DriverSQLite:
		return sqlite.Open, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", name)
	}
}

// DB wraps a GORM database with structured logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New opens a database connection with retry logic and connection pooling.
func New(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		var db *gorm.DB
		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
				err = pingErr
				_ = sqlDB.Close()
			} else {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
				if lifetime, parseErr := time.ParseDuration(cfg.ConnMaxLifetime); parseErr == nil {
					sqlDB.SetConnMaxLifetime(lifetime)
				}
				if idleTime, parseErr := time.ParseDuration(cfg.ConnMaxIdleTime); parseErr == nil {
					sqlDB.SetConnMaxIdleTime(idleTime)
				}

				log.Debug("Database connection established", logger.Fields("attempt", attempt))
				return &DB{GormDB: db, log: log, cfg: cfg}, nil
			}
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * 100 * time.Millisecond
			log.Warn("Database connection attempt failed, retrying", logger.Fields(
				"attempt", attempt,
				logger.FieldError, err.Error(),
				"backoff", backoff.String(),
			))
			if waitErr := contextSleep(ctx, backoff); waitErr != nil {
				return nil, fmt.Errorf("database connection canceled during retry: %w", waitErr)
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, err)
}

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// TransactionFunc defines a function that runs within a transaction.
type TransactionFunc func(tx *gorm.DB) error

// WithTransaction executes fn within a transaction with panic recovery.
func (d *DB) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx := d.GormDB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			d.log.Error("Transaction rolled back due to panic", logger.Fields("panic", fmt.Sprintf("%v", r)))
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HealthStatus is a point-in-time view of the connection pool.
type HealthStatus struct {
	Connected  bool          `json:"connected"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency"`
	OpenConns  int           `json:"open_connections"`
	InUseConns int           `json:"in_use_connections"`
	IdleConns  int           `json:"idle_connections"`
}

// CheckHealth pings the database and reports pool statistics.
func (d *DB) CheckHealth(ctx context.Context) HealthStatus {
	start := time.Now()

	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return HealthStatus{Error: err.Error(), Latency: time.Since(start)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return HealthStatus{Error: err.Error(), Latency: time.Since(start)}
	}

	stats := sqlDB.Stats()
	return HealthStatus{
		Connected:  true,
		Latency:    time.Since(start),
		OpenConns:  stats.OpenConnections,
		InUseConns: stats.InUse,
		IdleConns:  stats.Idle,
	}
}
