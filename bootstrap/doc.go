// Package bootstrap owns the application context: the DI container, the
// per-application configuration store, the component registry, the service
// providers and the publishable assets they declare.
//
// # Lifecycle
//
//	app, err := bootstrap.New(config.ServiceConfig{Name: "ban"},
//	    bootstrap.WithBasePath(dir),
//	    bootstrap.WithComponents(db),
//	    bootstrap.WithProviders(ban.NewServiceProvider(), console.NewServiceProvider()),
//	)
//	if err := app.Boot(ctx); err != nil { ... }
//	defer app.Destroy(ctx)
//
// Boot runs environment callbacks, creates the migrations directory,
// registers providers, starts components and finally boots providers.
// Destroy runs before-destroy callbacks, stops components and closes the
// container.
package bootstrap
