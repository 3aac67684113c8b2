// Package logger provides structured logging built on zerolog.
//
// Loggers carry a service name and can be narrowed to a component:
//
//	log := logger.NewDefault("ban").WithComponent("migration")
//	log.Info("Applying migration", map[string]interface{}{"version": 20170304000000})
//
// Output can be console or JSON, to stdout, stderr or discarded entirely
// (useful in tests).
package logger
