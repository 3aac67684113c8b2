package bootstrap

import "context"

// ServiceProvider plugs a package into an application.
//
// Register binds services and declares configuration defaults and
// publishable assets; it must not resolve services owned by other
// providers. Boot runs once every provider has registered and every
// component has started.
type ServiceProvider interface {
	Name() string
	Register(app *App) error
	Boot(ctx context.Context, app *App) error
}
