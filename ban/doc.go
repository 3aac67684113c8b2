// Package ban lets entities be banned.
//
// A bannable entity is any GORM model with an ID and a nullable banned_at
// column. Bans are stored in the bans table, created by the migration
// templates in Migrations. ServiceProvider declares those templates under
// the "ban-migrations" publish tag and binds a Service:
//
//	svc, _ := ban.ServiceFrom(app)
//	_, err := svc.Ban(ctx, user, ban.Attributes{Comment: "spam"})
//
// The user model the package works with is read from the
// auth.providers.users.model configuration key and must hold a ban.Model.
package ban
