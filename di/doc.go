// Package di provides the dependency injection container owned by each
// application instance.
//
// It supports eager, lazy and singleton registration modes with type-safe
// resolution using Go generics. Constructors take no argument, a
// context.Context, or the Container itself:
//
//	c.Register(di.Keys.BanService, func(c di.Container) (*ban.Service, error) {
//	    db, err := di.Resolve[*gorm.DB](c, di.Keys.Database)
//	    ...
//	})
//
//	svc := di.MustResolve[*ban.Service](c, di.Keys.BanService)
package di
