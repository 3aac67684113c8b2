package publish

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybercog/ban/errors"
)

func templates() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_bans_table.up.sql":   {Data: []byte("CREATE TABLE bans (id INTEGER);")},
		"migrations/001_create_bans_table.down.sql": {Data: []byte("DROP TABLE bans;")},
		"stubs/ban.stub":                            {Data: []byte("stub")},
	}
}

func newPublisher(t *testing.T) (*Publisher, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	p := New(fsys, nil)
	require.NoError(t, p.Register(Asset{Tag: "ban-migrations", Source: templates(), Dir: "migrations", Dest: "/app/database/migrations"}))
	require.NoError(t, p.Register(Asset{Tag: "ban-stubs", Source: templates(), Dir: "stubs", Dest: "/app/stubs"}))
	return p, fsys
}

func TestPublish_CopiesAllAssets(t *testing.T) {
	p, fsys := newPublisher(t)

	res, err := p.Publish(context.Background(), Options{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"/app/database/migrations/001_create_bans_table.up.sql",
		"/app/database/migrations/001_create_bans_table.down.sql",
		"/app/stubs/ban.stub",
	}, res.Copied)
	assert.Empty(t, res.Skipped)

	data, err := afero.ReadFile(fsys, "/app/database/migrations/001_create_bans_table.up.sql")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE bans (id INTEGER);", string(data))
}

func TestPublish_SkipsExistingUnlessForced(t *testing.T) {
	p, fsys := newPublisher(t)
	target := "/app/database/migrations/001_create_bans_table.up.sql"
	require.NoError(t, afero.WriteFile(fsys, target, []byte("edited"), 0o644))

	res, err := p.Publish(context.Background(), Options{Tags: []string{"ban-migrations"}})
	require.NoError(t, err)
	assert.Equal(t, []string{target}, res.Skipped)
	data, _ := afero.ReadFile(fsys, target)
	assert.Equal(t, "edited", string(data))

	res, err = p.Publish(context.Background(), Options{Tags: []string{"ban-migrations"}, Force: true})
	require.NoError(t, err)
	assert.Contains(t, res.Copied, target)
	data, _ = afero.ReadFile(fsys, target)
	assert.Equal(t, "CREATE TABLE bans (id INTEGER);", string(data))
}

func TestPublish_TagFilter(t *testing.T) {
	p, fsys := newPublisher(t)

	res, err := p.Publish(context.Background(), Options{Tags: []string{"ban-stubs"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/app/stubs/ban.stub"}, res.Copied)

	exists, _ := afero.DirExists(fsys, "/app/database/migrations")
	assert.False(t, exists)
}

func TestPublish_UnknownTag(t *testing.T) {
	p, _ := newPublisher(t)

	_, err := p.Publish(context.Background(), Options{Tags: []string{"nope"}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestPublish_MissingSourceDir(t *testing.T) {
	p := New(afero.NewMemMapFs(), nil)
	require.NoError(t, p.Register(Asset{Tag: "x", Source: templates(), Dir: "absent", Dest: "/out"}))

	_, err := p.Publish(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFilesystem))
}

func TestPublish_CanceledContext(t *testing.T) {
	p, _ := newPublisher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Publish(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegister_Validates(t *testing.T) {
	p := New(afero.NewMemMapFs(), nil)

	err := p.Register(Asset{Source: templates(), Dest: "/out"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "tag")

	assert.Error(t, p.Register(Asset{Tag: "x", Dest: "/out"}))
	assert.Empty(t, p.Assets())
}

func TestTags(t *testing.T) {
	p, _ := newPublisher(t)
	require.NoError(t, p.Register(Asset{Tag: "ban-migrations", Source: templates(), Dest: "/other"}))

	assert.Equal(t, []string{"ban-migrations", "ban-stubs"}, p.Tags())
	assert.Len(t, p.Assets(), 3)
}

func TestClean(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/work/a.sql", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/work/nested/b.sql", []byte("b"), 0o644))

	removed, err := Clean(fsys, "/work")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.sql", "nested"}, removed)

	entries, err := afero.ReadDir(fsys, "/work")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClean_MissingDirectory(t *testing.T) {
	_, err := Clean(afero.NewMemMapFs(), "/nowhere")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFilesystem))
}
