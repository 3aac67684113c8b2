package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercog/ban/component"
	"github.com/cybercog/ban/testutil"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func startDB(t *testing.T) *Component {
	t.Helper()
	tc := NewComponent(t.TempDir())
	testutil.T(t).Setup(tc)
	return tc
}

func createUsers(t *testing.T, tc *Component) {
	t.Helper()
	require.NoError(t, tc.DB().Exec("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)").Error)
	require.NoError(t, tc.DB().Exec("CREATE TABLE fixture_migrations (version INTEGER, dirty BOOLEAN)").Error)
	require.NoError(t, tc.DB().Exec("INSERT INTO fixture_migrations VALUES (1, 0)").Error)
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tc := NewComponent(t.TempDir())

	assert.Equal(t, "database-test", tc.Name())
	assert.Nil(t, tc.DB())
	assert.Equal(t, component.StatusUnhealthy, tc.Health(ctx).Status)
	assert.NoError(t, tc.Stop(ctx))

	require.NoError(t, tc.Start(ctx))
	assert.Error(t, tc.Start(ctx), "second start")
	assert.Equal(t, component.StatusHealthy, tc.Health(ctx).Status)
	assert.FileExists(t, tc.Path())
	assert.Same(t, tc.DB(), tc.Gorm())

	require.NoError(t, tc.Stop(ctx))
	assert.Nil(t, tc.DB())
	assert.FileExists(t, tc.Path())
}

func TestComponent_DataSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	tc := NewComponent(t.TempDir())
	require.NoError(t, tc.Start(ctx))
	createUsers(t, tc)
	MustLoadFixture(t, tc.DB(), "users", []map[string]interface{}{{"id": 1, "name": "Alice"}})
	require.NoError(t, tc.Stop(ctx))

	require.NoError(t, tc.Start(ctx))
	defer tc.Stop(ctx)
	AssertRowCount(t, tc.DB(), "users", 1)
}

func TestComponent_ResetKeepsMigrationState(t *testing.T) {
	tc := startDB(t)
	createUsers(t, tc)
	MustLoadFixture(t, tc.DB(), "users", []map[string]interface{}{{"name": "Alice"}, {"name": "Bob"}})

	testutil.T(t).Reset(tc)

	AssertTableEmpty(t, tc.DB(), "users")
	AssertRowCount(t, tc.DB(), "fixture_migrations", 1)
}

func TestComponent_NotStarted(t *testing.T) {
	ctx := context.Background()
	tc := NewComponent(t.TempDir())

	assert.Error(t, tc.Reset(ctx))
	_, err := tc.Snapshot(ctx)
	assert.Error(t, err)
	assert.Error(t, tc.Restore(ctx, map[string][]map[string]interface{}{}))
}

func TestComponent_SnapshotRestore(t *testing.T) {
	tc := startDB(t)
	createUsers(t, tc)
	h := testutil.T(t)

	MustLoadFixture(t, tc.DB(), "users", []map[string]interface{}{{"id": 1, "name": "Alice"}})
	snap := h.Snapshot(tc)

	MustLoadFixture(t, tc.DB(), "users", []map[string]interface{}{{"id": 2, "name": "Bob"}})
	AssertRowCount(t, tc.DB(), "users", 2)

	h.Restore(tc, snap)
	AssertRowCount(t, tc.DB(), "users", 1)

	var name string
	require.NoError(t, tc.DB().Raw("SELECT name FROM users WHERE id = 1").Scan(&name).Error)
	assert.Equal(t, "Alice", name)
}

func TestComponent_RestoreInvalidSnapshot(t *testing.T) {
	tc := startDB(t)
	err := tc.Restore(context.Background(), "not a snapshot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snapshot type")
}

func TestComponent_WithModels(t *testing.T) {
	tc := NewComponent(t.TempDir()).WithModels(&note{})
	testutil.T(t).Setup(tc)

	assert.True(t, TableExists(tc.DB(), "notes"))
	require.NoError(t, tc.DB().Create(&note{Body: "hello"}).Error)
	AssertRowCount(t, tc.DB(), "notes", 1)
}
