// Package component defines lifecycle-managed infrastructure owned by an
// application: the database connection, the test database, anything that
// must be started before service providers boot and stopped when the
// application is destroyed.
//
// Components are started in registration order and stopped in reverse.
package component
