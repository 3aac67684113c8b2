package migration

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cybercog/ban/errors"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.sqlite")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newRunner(t *testing.T) (*Runner, *gorm.DB) {
	t.Helper()
	db := openDB(t)
	r, err := NewRunner(db, nil)
	require.NoError(t, err)
	return r, db
}

func packageSet() Set {
	return Set{
		Name: "package",
		FS: fstest.MapFS{
			"migrations/20170304000000_create_bans_table.up.sql":   {Data: []byte("CREATE TABLE bans (id INTEGER PRIMARY KEY);")},
			"migrations/20170304000000_create_bans_table.down.sql": {Data: []byte("DROP TABLE bans;")},
			"migrations/20170305000000_add_comment.up.sql":         {Data: []byte("ALTER TABLE bans ADD COLUMN comment TEXT;")},
			"migrations/README.md":                                 {Data: []byte("not a migration")},
		},
		Dir:   "migrations",
		Table: "package_migrations",
	}
}

func tableExists(t *testing.T, db *gorm.DB, name string) bool {
	t.Helper()
	return db.Migrator().HasTable(name)
}

func TestUp_AppliesInVersionOrder(t *testing.T) {
	r, db := newRunner(t)

	applied, err := r.Up(context.Background(), packageSet())
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "20170304000000_create_bans_table.up.sql", applied[0].Up)
	assert.Equal(t, "add_comment", applied[1].Identifier)

	assert.True(t, tableExists(t, db, "bans"))
	assert.True(t, db.Migrator().HasColumn("bans", "comment"))
	assert.True(t, tableExists(t, db, "package_migrations"))

	v, dirty, err := r.Version(packageSet())
	require.NoError(t, err)
	assert.Equal(t, uint(20170305000000), v)
	assert.False(t, dirty)
}

func TestUp_SecondRunIsNoop(t *testing.T) {
	r, _ := newRunner(t)
	ctx := context.Background()

	_, err := r.Up(ctx, packageSet())
	require.NoError(t, err)
	applied, err := r.Up(ctx, packageSet())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestUp_EmptySetIsNoop(t *testing.T) {
	r, db := newRunner(t)
	set := Set{Name: "empty", FS: fstest.MapFS{"migrations/.gitkeep": {}}, Dir: "migrations", Table: "empty_migrations"}

	applied, err := r.Up(context.Background(), set)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.False(t, tableExists(t, db, "empty_migrations"))
}

func TestUp_SetsAreTrackedSeparately(t *testing.T) {
	r, db := newRunner(t)
	ctx := context.Background()
	fixtures := Set{
		Name:  "fixtures",
		FS:    fstest.MapFS{"20170101000000_create_users_table.up.sql": {Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);")}},
		Table: "fixture_migrations",
	}

	_, err := r.Up(ctx, packageSet())
	require.NoError(t, err)
	applied, err := r.Up(ctx, fixtures)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	assert.True(t, tableExists(t, db, "users"))
	v, _, err := r.Version(fixtures)
	require.NoError(t, err)
	assert.Equal(t, uint(20170101000000), v)
}

func TestUp_FailureNamesMigration(t *testing.T) {
	r, _ := newRunner(t)
	set := Set{
		Name: "package",
		FS: fstest.MapFS{
			"1_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
			"2_broken.up.sql": {Data: []byte("CREATE TABL broken;")},
		},
		Table: "package_migrations",
	}

	_, err := r.Up(context.Background(), set)
	require.Error(t, err)

	var migErr *Error
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, "package", migErr.Set)
	assert.Equal(t, uint(2), migErr.Version)
	assert.Equal(t, "2_broken.up.sql", migErr.File)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMigrationFailed))
	assert.Contains(t, err.Error(), "2_broken.up.sql")

	status, err := r.Status(set)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.True(t, status[0].Applied)
	assert.True(t, status[1].Dirty)
}

func TestDown(t *testing.T) {
	r, db := newRunner(t)
	ctx := context.Background()

	_, err := r.Up(ctx, packageSet())
	require.NoError(t, err)
	require.NoError(t, r.Down(ctx, packageSet()))

	assert.False(t, tableExists(t, db, "bans"))
	v, _, err := r.Version(packageSet())
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestStatus(t *testing.T) {
	r, _ := newRunner(t)
	ctx := context.Background()

	status, err := r.Status(packageSet())
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.False(t, status[0].Applied)

	_, err = r.Up(ctx, packageSet())
	require.NoError(t, err)
	status, err = r.Status(packageSet())
	require.NoError(t, err)
	assert.True(t, status[0].Applied)
	assert.True(t, status[1].Applied)
	assert.Equal(t, "20170305000000_add_comment.up.sql", status[1].Name())
}

func TestFromDir(t *testing.T) {
	r, db := newRunner(t)
	dir := t.TempDir()
	fsys := afero.NewOsFs()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(dir, "1_create_things.up.sql"), []byte("CREATE TABLE things (id INTEGER);"), 0o644))

	set := FromDir(fsys, dir, "published", "package_migrations")
	files, err := r.Files(set)
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = r.Up(context.Background(), set)
	require.NoError(t, err)
	assert.True(t, tableExists(t, db, "things"))
}

func TestFromDir_MissingDirectoryIsEmpty(t *testing.T) {
	r, _ := newRunner(t)
	set := FromDir(afero.NewOsFs(), filepath.Join(t.TempDir(), "absent"), "published", "package_migrations")

	applied, err := r.Up(context.Background(), set)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestInvalidSet(t *testing.T) {
	r, _ := newRunner(t)

	_, err := r.Up(context.Background(), Set{Name: "x", FS: fstest.MapFS{}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestUp_CanceledContext(t *testing.T) {
	r, db := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Up(ctx, packageSet())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, tableExists(t, db, "bans"))
}
