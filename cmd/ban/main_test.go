package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/logger"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	file := filepath.Join(base, "config.yml")
	body := fmt.Sprintf(`name: ban-cli
environment: testing
base_path: %s
migrations_table: package_migrations

logging:
  level: error
  format: json
  output: discard

database:
  driver: sqlite
  dsn: %s
`, base, filepath.Join(base, "ban.sqlite"))
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	return base, file
}

func runCLI(t *testing.T, file string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), args, &out, config.WithConfigFile(file)))
	return out.String()
}

func TestRun_MigrateFlow(t *testing.T) {
	prev := logger.GetGlobalLogger()
	t.Cleanup(func() { logger.SetGlobalLogger(prev) })

	base, file := writeConfig(t)

	assert.Equal(t, "No migrations found.\n", runCLI(t, file, "migrate:status"))
	assert.DirExists(t, filepath.Join(base, "database", "migrations"))

	out := runCLI(t, file, "vendor:publish", "--tag", "ban-migrations")
	assert.Contains(t, out, "Copied database/migrations/20170304000000_create_bans_table.up.sql")

	assert.Equal(t, "Migrated: 20170304000000_create_bans_table.up.sql\n", runCLI(t, file, "migrate"))

	// The configured tracking table survives between runs.
	out = runCLI(t, file, "migrate:status")
	assert.Regexp(t, `Yes\s+20170304000000_create_bans_table.up.sql`, out)
	assert.FileExists(t, filepath.Join(base, "ban.sqlite"))
}

func TestRun_About(t *testing.T) {
	prev := logger.GetGlobalLogger()
	t.Cleanup(func() { logger.SetGlobalLogger(prev) })

	base, file := writeConfig(t)
	out := runCLI(t, file, "about")
	assert.Regexp(t, `Application\s+ban-cli`, out)
	assert.Regexp(t, `Environment\s+testing`, out)
	assert.Contains(t, out, filepath.Join(base, "database", "migrations"))
}

func TestRun_UnknownCommand(t *testing.T) {
	prev := logger.GetGlobalLogger()
	t.Cleanup(func() { logger.SetGlobalLogger(prev) })

	_, file := writeConfig(t)
	err := run(context.Background(), []string{"nope"}, &bytes.Buffer{}, config.WithConfigFile(file))
	assert.Error(t, err)
}
