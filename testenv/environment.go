package testenv

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/cybercog/ban/ban"
	"github.com/cybercog/ban/bootstrap"
	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/console"
	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/database/migration"
	dbtest "github.com/cybercog/ban/database/testutil"
	"github.com/cybercog/ban/di"
	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/factory"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/publish"
)

// Tracking tables of the two migration sets.
const (
	PackageMigrationsTable = "package_migrations"
	FixtureMigrationsTable = "fixture_migrations"
)

// Setup step names, used to prefix step errors.
const (
	StepBoot              = "boot application"
	StepDestroyMigrations = "destroy package migrations"
	StepPublishMigrations = "publish package migrations"
	StepMigratePackage    = "migrate package tables"
	StepMigrateFixtures   = "migrate unit test tables"
	StepFactories         = "register package factories"
)

// Options configures an Environment.
type Options struct {
	// BasePath is the application root. Published migrations go to
	// <BasePath>/database/migrations.
	BasePath string
	// Fs is the filesystem of the application root. Defaults to the OS.
	Fs afero.Fs
	// DatabaseDir holds the sqlite file. Defaults to BasePath.
	DatabaseDir string
	// UserModel replaces the configured auth user model.
	UserModel ban.Model
	// Fixtures are the migrations owned by the test suite. Optional.
	Fixtures migration.Set
	// Factories are loaded into the environment's factory registry.
	Factories []factory.Definitions
	// Providers are the service providers under test. Defaults to the ban
	// and console providers.
	Providers []bootstrap.ServiceProvider
	Logger    *logger.Logger
}

func (o *Options) applyDefaults() {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.DatabaseDir == "" {
		o.DatabaseDir = o.BasePath
	}
	if len(o.Providers) == 0 {
		o.Providers = []bootstrap.ServiceProvider{ban.NewServiceProvider(), console.NewServiceProvider()}
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
}

// Environment is the application context of one test.
type Environment struct {
	App *bootstrap.App

	opts      Options
	db        *dbtest.Component
	factories *factory.Registry
	log       *logger.Logger
}

// New builds the application of a test without booting it.
func New(opts Options) (*Environment, error) {
	if opts.BasePath == "" {
		return nil, errors.Validation("testenv: base path is required")
	}
	if opts.UserModel.IsZero() {
		return nil, errors.Validation("testenv: user model is required")
	}
	opts.applyDefaults()

	env := &Environment{
		opts:      opts,
		db:        dbtest.NewComponent(opts.DatabaseDir).WithLogger(opts.Logger),
		factories: factory.NewRegistry(),
		log:       opts.Logger.WithComponent("testenv"),
	}

	app, err := bootstrap.New(
		config.ServiceConfig{Name: "testing", Environment: "testing"},
		bootstrap.WithLogger(opts.Logger),
		bootstrap.WithFs(opts.Fs),
		bootstrap.WithBasePath(opts.BasePath),
		bootstrap.WithEnvironment(env.SetDefaultUserModel),
		bootstrap.WithProviders(opts.Providers...),
		bootstrap.WithComponents(env.db),
	)
	if err != nil {
		return nil, err
	}
	if err := database.Register(app.Container, env.db); err != nil {
		return nil, err
	}
	env.App = app
	return env, nil
}

// SetUp boots the application and prepares the database:
// destroy, publish, migrate package, migrate fixtures, register factories.
// The first failing step aborts the sequence.
func (e *Environment) SetUp(ctx context.Context) error {
	start := time.Now()
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{StepBoot, e.App.Boot},
		{StepDestroyMigrations, func(context.Context) error { return e.DestroyPackageMigrations() }},
		{StepPublishMigrations, e.PublishPackageMigrations},
		{StepMigratePackage, e.MigratePackageTables},
		{StepMigrateFixtures, e.MigrateUnitTestTables},
		{StepFactories, func(context.Context) error { return e.RegisterPackageFactories() }},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			e.log.Error("Setup failed", logger.Fields(logger.FieldPhase, step.name, logger.FieldError, err.Error()))
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	e.log.Debug("Environment ready", logger.DurationFields("setup", time.Since(start)))
	return nil
}

// TearDown destroys the application. Before-destroy callbacks run first.
func (e *Environment) TearDown(ctx context.Context) error {
	return e.App.Destroy(ctx)
}

// SetDefaultUserModel points the auth user model at the configured
// substitute. It runs while the application boots, before any provider
// registers.
func (e *Environment) SetDefaultUserModel(app *bootstrap.App) error {
	app.Config().Set(config.KeyAuthUserModel, e.opts.UserModel)
	return nil
}

// DestroyPackageMigrations deletes everything in the published migrations
// directory. The directory must exist.
func (e *Environment) DestroyPackageMigrations() error {
	removed, err := publish.Clean(e.App.Fs(), e.App.MigrationsPath())
	if err != nil {
		return err
	}
	e.log.Debug("Published migrations removed", logger.Fields("count", len(removed)))
	return nil
}

// PublishPackageMigrations runs vendor:publish --force.
func (e *Environment) PublishPackageMigrations(ctx context.Context) error {
	_, err := e.Kernel().Call(ctx, "vendor:publish", "--force")
	return err
}

// MigratePackageTables applies the published migrations.
func (e *Environment) MigratePackageTables(ctx context.Context) error {
	_, err := e.Kernel().Call(ctx, "migrate",
		"--path", e.App.MigrationsPath(),
		"--table", PackageMigrationsTable,
	)
	return err
}

// MigrateUnitTestTables applies the fixture migrations of the test suite.
func (e *Environment) MigrateUnitTestTables(ctx context.Context) error {
	if e.opts.Fixtures.FS == nil {
		return nil
	}
	set := e.opts.Fixtures
	if set.Table == "" {
		set.Table = FixtureMigrationsTable
	}
	if set.Name == "" {
		set.Name = "fixtures"
	}

	runner, err := migration.NewRunner(e.DB(), e.App.Logger)
	if err != nil {
		return err
	}
	_, err = runner.Up(ctx, set)
	return err
}

// RegisterPackageFactories loads the factory definitions and binds the
// registry under di.Keys.Factories.
func (e *Environment) RegisterPackageFactories() error {
	e.factories.Load(e.opts.Factories...)
	return e.App.Container.RegisterSingleton(di.Keys.Factories, e.factories)
}

// BeforeApplicationDestroyed registers fn to run when the application is
// destroyed, ahead of callbacks registered earlier. It fails once the
// environment has been torn down.
func (e *Environment) BeforeApplicationDestroyed(fn bootstrap.Hook) error {
	return e.App.BeforeDestroy(fn)
}

// Kernel returns the console kernel of the application.
func (e *Environment) Kernel() *console.Kernel {
	if k, err := console.FromApp(e.App); err == nil {
		return k
	}
	return console.NewKernel(e.App)
}

// DB returns the test database connection, or nil before SetUp.
func (e *Environment) DB() *gorm.DB { return e.db.DB() }

// Database returns the test database component.
func (e *Environment) Database() *dbtest.Component { return e.db }

// Factories returns the factory registry.
func (e *Environment) Factories() *factory.Registry { return e.factories }

// Setup builds and sets up an environment for t and tears it down when the
// test ends. An empty BasePath uses t.TempDir().
func Setup(t testing.TB, opts Options) *Environment {
	t.Helper()
	if opts.BasePath == "" {
		opts.BasePath = t.TempDir()
	}

	env, err := New(opts)
	if err != nil {
		t.Fatalf("testenv: %v", err)
	}
	t.Cleanup(func() {
		if err := env.TearDown(context.Background()); err != nil {
			t.Errorf("testenv: teardown: %v", err)
		}
	})
	if err := env.SetUp(context.Background()); err != nil {
		t.Fatalf("testenv: %v", err)
	}
	return env
}
