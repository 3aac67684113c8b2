package bootstrap

import (
	"time"

	"github.com/spf13/afero"

	"github.com/cybercog/ban/component"
	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/di"
	"github.com/cybercog/ban/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	container       di.Container
	store           *config.Store
	fs              afero.Fs
	basePath        string
	providers       []ServiceProvider
	environment     []EnvironmentFunc
	components      []component.Component
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, a logger is built from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithContainer sets a custom DI container for the application.
func WithContainer(c di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithConfig seeds the application with an existing configuration store.
func WithConfig(s *config.Store) Option {
	return func(o *appOptions) {
		o.store = s
	}
}

// WithFs sets the filesystem used for publishing and working directories.
// Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *appOptions) {
		o.fs = fs
	}
}

// WithBasePath sets the application root. Defaults to ".".
func WithBasePath(path string) Option {
	return func(o *appOptions) {
		o.basePath = path
	}
}

// WithProviders appends service providers. They register and boot in order.
func WithProviders(providers ...ServiceProvider) Option {
	return func(o *appOptions) {
		o.providers = append(o.providers, providers...)
	}
}

// WithEnvironment appends callbacks that run at the start of Boot, before
// any provider registers.
func WithEnvironment(fns ...EnvironmentFunc) Option {
	return func(o *appOptions) {
		o.environment = append(o.environment, fns...)
	}
}

// WithComponents appends lifecycle components, started in order during Boot.
func WithComponents(components ...component.Component) Option {
	return func(o *appOptions) {
		o.components = append(o.components, components...)
	}
}

// WithGracefulTimeout bounds Destroy when it runs at the end of RunTask.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
