// Package config loads service configuration and holds per-application
// configuration values.
//
// LoadConfig reads a YAML file and .env file found in standard locations and
// overlays environment variables (BAN_ prefix) before unmarshalling into a
// struct:
//
//	var cfg AppConfig
//	err := config.LoadConfig("ban", &cfg)
//
// Store is a key/value view owned by a single application instance. Service
// providers declare defaults with SetDefault; environment setup code
// overrides them with Set:
//
//	store.SetDefault(config.KeyAuthUserModel, ban.DefaultUserModel)
//	store.Set(config.KeyAuthUserModel, ban.ModelFor(&User{}))
package config
