package ban

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cybercog/ban/bootstrap"
	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/di"
	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/publish"
)

// ServiceProvider plugs the package into an application.
type ServiceProvider struct{}

var _ bootstrap.ServiceProvider = (*ServiceProvider)(nil)

// NewServiceProvider creates the provider.
func NewServiceProvider() *ServiceProvider { return &ServiceProvider{} }

func (p *ServiceProvider) Name() string { return "ban" }

// Register declares the default user model and the publishable migrations,
// and binds the Service.
func (p *ServiceProvider) Register(app *bootstrap.App) error {
	app.Config().SetDefault(config.KeyAuthUserModel, DefaultUserModel)

	if err := app.Publishes(publish.Asset{
		Tag:    PublishTag,
		Source: Migrations,
		Dir:    MigrationsDir,
		Dest:   app.MigrationsPath(),
	}); err != nil {
		return fmt.Errorf("publish migrations: %w", err)
	}

	return app.Container.RegisterLazy(di.Keys.BanService, func(c di.Container) (*Service, error) {
		store, err := di.Resolve[*config.Store](c, di.Keys.Config)
		if err != nil {
			return nil, err
		}
		user, err := UserModel(store)
		if err != nil {
			return nil, err
		}
		db, err := di.Resolve[*gorm.DB](c, di.Keys.Database)
		if err != nil {
			return nil, err
		}
		log, _ := di.TryResolve[*logger.Logger](c, di.Keys.Logger)
		return NewService(db, user, log), nil
	})
}

// Boot checks the configured user model.
func (p *ServiceProvider) Boot(_ context.Context, app *bootstrap.App) error {
	user, err := UserModel(app.Config())
	if err != nil {
		return err
	}
	app.Logger.WithComponent("ban").Debug("User model configured", logger.Fields("model", user.String()))
	return nil
}

// UserModel reads the auth user model from store.
func UserModel(store *config.Store) (Model, error) {
	v := store.Get(config.KeyAuthUserModel)
	if v == nil {
		return Model{}, errors.NotConfigured(config.KeyAuthUserModel)
	}
	m, ok := v.(Model)
	if !ok || m.IsZero() {
		return Model{}, errors.Validation(fmt.Sprintf("%s must hold a ban.Model, got %T", config.KeyAuthUserModel, v))
	}
	return m, nil
}

// ServiceFrom resolves the Service bound by ServiceProvider.
func ServiceFrom(app *bootstrap.App) (*Service, error) {
	return di.Resolve[*Service](app.Container, di.Keys.BanService)
}
