// Package factory builds and persists model instances for tests.
//
// Definitions are registered per Go type and grouped into sets that a test
// environment loads in one call:
//
//	func Definitions(r *factory.Registry) {
//	    factory.Define(r, func(f *factory.Faker) *User {
//	        return &User{Name: f.Name(), Email: f.Email()}
//	    })
//	}
//
//	r := factory.NewRegistry()
//	r.Load(Definitions)
//	user, err := factory.Create[User](ctx, r, db, func(u *User) { u.Name = "Alice" })
package factory
