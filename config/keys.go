package config

// Well-known configuration keys.
const (
	// KeyAuthUserModel names the entity type the auth provider resolves as "the user".
	KeyAuthUserModel = "auth.providers.users.model"
	// KeyDatabaseDefault names the default database connection.
	KeyDatabaseDefault = "database.default"
	// KeyMigrationsTable names the table tracking published package migrations.
	KeyMigrationsTable = "database.migrations"
)

// Application keys seeded by bootstrap.
const (
	KeyAppName        = "app.name"
	KeyAppEnvironment = "app.env"
	KeyAppBasePath    = "app.base_path"
)
