package console

import (
	"context"

	"github.com/cybercog/ban/bootstrap"
	"github.com/cybercog/ban/di"
)

// ServiceProvider binds a Kernel under di.Keys.Console.
type ServiceProvider struct {
	commands []Command
}

var _ bootstrap.ServiceProvider = (*ServiceProvider)(nil)

// NewServiceProvider creates the provider. commands are added to the
// built-in ones.
func NewServiceProvider(commands ...Command) *ServiceProvider {
	return &ServiceProvider{commands: commands}
}

func (p *ServiceProvider) Name() string { return "console" }

func (p *ServiceProvider) Register(app *bootstrap.App) error {
	return app.Container.RegisterLazy(di.Keys.Console, func() *Kernel {
		return NewKernel(app, p.commands...)
	})
}

func (p *ServiceProvider) Boot(context.Context, *bootstrap.App) error { return nil }
