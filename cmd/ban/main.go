package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cybercog/ban/ban"
	"github.com/cybercog/ban/bootstrap"
	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/console"
	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/logger"
)

type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	BasePath             string          `yaml:"base_path" mapstructure:"base_path"`
	MigrationsTable      string          `yaml:"migrations_table" mapstructure:"migrations_table"`
	Database             database.Config `yaml:"database" mapstructure:"database"`
}

func (c *appConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = "ban"
	}
	if c.BasePath == "" {
		c.BasePath = "."
	}
	if c.Database.DSN == "" {
		c.Database.DSN = filepath.Join(c.BasePath, "database", "ban.sqlite")
	}
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, opts ...config.LoaderOption) error {
	var cfg appConfig
	if err := config.LoadConfig("ban", &cfg, opts...); err != nil {
		return err
	}
	cfg.applyDefaults()

	cfg.ServiceConfig.ApplyDefaults()
	cfg.Logging.ServiceName = cfg.Name
	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()

	db := database.NewComponent(cfg.Database, log)
	app, err := bootstrap.New(cfg.ServiceConfig,
		bootstrap.WithLogger(log),
		bootstrap.WithBasePath(cfg.BasePath),
		bootstrap.WithComponents(db),
		bootstrap.WithProviders(ban.NewServiceProvider(), console.NewServiceProvider()),
	)
	if err != nil {
		return err
	}
	if err := database.Register(app.Container, db); err != nil {
		return err
	}
	if cfg.MigrationsTable != "" {
		app.Config().Set(config.KeyMigrationsTable, cfg.MigrationsTable)
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		kernel, err := console.FromApp(app)
		if err != nil {
			return err
		}
		return kernel.Execute(ctx, args, out)
	})
}
