package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/cybercog/ban/component"
	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/di"
	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/publish"
)

// MigrationsDir is the migrations working directory relative to the base path.
const MigrationsDir = "database/migrations"

// App is one application context. Nothing in it is shared with other Apps,
// so several can live in the same process.
type App struct {
	Name        string
	Environment string
	Container   di.Container
	Components  *component.Registry
	Logger      *logger.Logger

	store     *config.Store
	fs        afero.Fs
	basePath  string
	publisher *publish.Publisher

	providers       []ServiceProvider
	environment     []EnvironmentFunc
	onBooted        []Hook
	beforeDestroy   []Hook
	gracefulTimeout time.Duration

	booted    bool
	destroyed bool
	mu        sync.Mutex
}

// New creates an application from cfg. It applies defaults and validates
// cfg, but does not boot.
func New(cfg config.ServiceConfig, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)

	app := &App{
		Name:            cfg.Name,
		Environment:     cfg.Environment,
		Container:       o.container,
		Logger:          o.logger,
		store:           o.store,
		fs:              o.fs,
		basePath:        o.basePath,
		providers:       o.providers,
		environment:     o.environment,
		gracefulTimeout: 15 * time.Second,
	}
	if app.Container == nil {
		app.Container = di.NewContainer()
	}
	if app.Logger == nil {
		app.Logger = logger.New(&cfg.Logging, cfg.Name)
	}
	if app.store == nil {
		app.store = config.NewStore()
	}
	if app.fs == nil {
		app.fs = afero.NewOsFs()
	}
	if app.basePath == "" {
		app.basePath = "."
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	app.Components = component.NewRegistry(app.Logger)
	for _, c := range o.components {
		if err := app.Components.Register(c); err != nil {
			return nil, err
		}
	}
	app.publisher = publish.New(app.fs, app.Logger)

	app.store.SetDefault(config.KeyAppName, cfg.Name)
	app.store.SetDefault(config.KeyAppEnvironment, cfg.Environment)
	app.store.SetDefault(config.KeyAppBasePath, app.basePath)

	if err := app.bindCore(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) bindCore() error {
	bindings := map[string]interface{}{
		di.Keys.Config:    a.store,
		di.Keys.Logger:    a.Logger,
		di.Keys.Files:     a.fs,
		di.Keys.Publisher: a.publisher,
	}
	for key, instance := range bindings {
		if err := a.Container.RegisterSingleton(key, instance); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Config returns the application's configuration store.
func (a *App) Config() *config.Store { return a.store }

// Fs returns the application's filesystem.
func (a *App) Fs() afero.Fs { return a.fs }

// BasePath returns the application root.
func (a *App) BasePath() string { return a.basePath }

// Path joins elems onto the application root.
func (a *App) Path(elems ...string) string {
	return filepath.Join(append([]string{a.basePath}, elems...)...)
}

// MigrationsPath is the directory published migrations are copied to.
func (a *App) MigrationsPath() string {
	return a.Path(filepath.FromSlash(MigrationsDir))
}

// Publisher returns the registry of publishable assets.
func (a *App) Publisher() *publish.Publisher { return a.publisher }

// Publishes declares an asset that the vendor:publish command copies.
func (a *App) Publishes(asset publish.Asset) error {
	return a.publisher.Register(asset)
}

// RegisterComponent adds a component. Components added after Boot are not started.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Providers returns the registered service providers in order.
func (a *App) Providers() []ServiceProvider {
	return append([]ServiceProvider(nil), a.providers...)
}

// IsBooted reports whether Boot has been called.
func (a *App) IsBooted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.booted
}

// Boot prepares the application. The sequence is: environment callbacks,
// migrations directory, provider Register, component Start, provider Boot,
// OnBooted hooks. Booting twice is an error.
func (a *App) Boot(ctx context.Context) error {
	a.mu.Lock()
	if a.booted || a.destroyed {
		a.mu.Unlock()
		return errors.Conflict(fmt.Sprintf("application %s already booted", a.Name))
	}
	a.booted = true
	a.mu.Unlock()

	start := time.Now()
	log := a.Logger.WithComponent("bootstrap")

	for _, fn := range a.environment {
		if err := fn(a); err != nil {
			return fmt.Errorf("environment setup: %w", err)
		}
	}

	dir := a.MigrationsPath()
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Filesystem("mkdir", dir, err)
	}

	for _, p := range a.providers {
		if err := p.Register(a); err != nil {
			return fmt.Errorf("register provider %s: %w", p.Name(), err)
		}
		log.Debug("Provider registered", logger.Fields("provider", p.Name()))
	}

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	for _, p := range a.providers {
		if err := p.Boot(ctx, a); err != nil {
			return fmt.Errorf("boot provider %s: %w", p.Name(), err)
		}
	}

	a.mu.Lock()
	hooks := append([]Hook(nil), a.onBooted...)
	a.mu.Unlock()
	if err := runHooks(ctx, hooks); err != nil {
		return fmt.Errorf("onBooted hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		log.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	log.Info("Application booted", logger.DurationFields("boot", time.Since(start)))
	return nil
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Destroy tears the application down: before-destroy hooks first (all of
// them, even after a failure), then components in reverse order, then the
// container. Errors are aggregated. Destroying twice is a no-op.
func (a *App) Destroy(ctx context.Context) error {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return nil
	}
	a.destroyed = true
	hooks := a.beforeDestroy
	a.beforeDestroy = nil
	a.mu.Unlock()

	log := a.Logger.WithComponent("bootstrap")
	var result *multierror.Error

	if err := runAllHooks(ctx, hooks); err != nil {
		result = multierror.Append(result, fmt.Errorf("before destroy: %w", err))
	}
	if err := a.Components.StopAll(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := a.Container.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close container: %w", err))
	}

	if err := result.ErrorOrNil(); err != nil {
		log.Error("Application destroyed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	log.Debug("Application destroyed")
	return nil
}

// IsDestroyed reports whether Destroy has run.
func (a *App) IsDestroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}

// RunTask boots the application, runs task and destroys the application.
// SIGINT and SIGTERM cancel the task context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := a.Boot(taskCtx)
	if taskErr == nil {
		taskErr = task(taskCtx)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer stopCancel()
	if stopErr := a.Destroy(stopCtx); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}
