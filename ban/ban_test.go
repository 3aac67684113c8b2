package ban

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cybercog/ban/bootstrap"
	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/database/migration"
	dbtest "github.com/cybercog/ban/database/testutil"
	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/testutil"
)

type member struct {
	database.BaseModel
	Name     string
	BannedAt *time.Time
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := dbtest.NewComponent(t.TempDir()).WithModels(&member{})
	testutil.T(t).Setup(db)

	runner, err := migration.NewRunner(db.DB(), nil)
	require.NoError(t, err)
	_, err = runner.Up(context.Background(), MigrationSet("package_migrations"))
	require.NoError(t, err)
	return db.DB()
}

func newMember(t *testing.T, db *gorm.DB, name string) *member {
	t.Helper()
	m := &member{Name: name}
	require.NoError(t, db.Create(m).Error)
	return m
}

func reload(t *testing.T, db *gorm.DB, m *member) *member {
	t.Helper()
	var fresh member
	require.NoError(t, db.First(&fresh, m.ID).Error)
	return &fresh
}

func TestModelFor(t *testing.T) {
	m, err := ModelFor(&User{})
	require.NoError(t, err)
	assert.Equal(t, "user", m.Name())
	assert.Equal(t, "ban.User", m.String())
	assert.True(t, m.Is(&User{}))
	assert.False(t, m.Is(&member{}))
	assert.IsType(t, &User{}, m.New())

	_, err = ModelFor(User{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	_, err = ModelFor(nil)
	assert.Error(t, err)

	assert.Equal(t, "member", MustModelFor(&member{}).Name())
	assert.True(t, Model{}.IsZero())
	assert.Equal(t, "<none>", Model{}.String())
}

func TestMigrationSet_CreatesBansTable(t *testing.T) {
	db := setupDB(t)
	assert.True(t, dbtest.TableExists(db, "bans"))
	assert.True(t, dbtest.TableExists(db, "package_migrations"))

	columns, err := dbtest.GetColumnNames(db, "bans")
	require.NoError(t, err)
	assert.Contains(t, columns, "bannable_type")
	assert.Contains(t, columns, "expired_at")
	assert.Contains(t, columns, "deleted_at")
}

func TestService_BanAndUnban(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, MustModelFor(&member{}), nil)
	ctx := context.Background()
	m := newMember(t, db, "alice")

	banned, err := svc.IsBanned(ctx, m)
	require.NoError(t, err)
	assert.False(t, banned)

	record, err := svc.Ban(ctx, m, Attributes{Comment: "spam"})
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Equal(t, "member", record.BannableType)
	assert.Equal(t, m.ID, record.BannableID)
	require.NotNil(t, record.Comment)
	assert.Equal(t, "spam", *record.Comment)
	assert.True(t, record.IsPermanent())

	banned, err = svc.IsBanned(ctx, m)
	require.NoError(t, err)
	assert.True(t, banned)
	assert.NotNil(t, reload(t, db, m).BannedAt)

	bans, err := svc.Bans(ctx, m)
	require.NoError(t, err)
	assert.Len(t, bans, 1)

	require.NoError(t, svc.Unban(ctx, m))
	banned, err = svc.IsBanned(ctx, m)
	require.NoError(t, err)
	assert.False(t, banned)
	assert.Nil(t, reload(t, db, m).BannedAt)

	bans, err = svc.Bans(ctx, m)
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestService_OnlyAffectsTarget(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, MustModelFor(&member{}), nil)
	ctx := context.Background()
	alice := newMember(t, db, "alice")
	bob := newMember(t, db, "bob")

	_, err := svc.Ban(ctx, alice, Attributes{})
	require.NoError(t, err)

	banned, err := svc.IsBanned(ctx, bob)
	require.NoError(t, err)
	assert.False(t, banned)
	assert.Nil(t, reload(t, db, bob).BannedAt)
}

func TestService_ExpiredBan(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, MustModelFor(&member{}), nil)
	ctx := context.Background()
	m := newMember(t, db, "alice")

	expiry := time.Now().Add(time.Hour)
	record, err := svc.Ban(ctx, m, Attributes{ExpiredAt: &expiry})
	require.NoError(t, err)
	assert.True(t, record.IsTemporary())

	banned, err := svc.IsBanned(ctx, m)
	require.NoError(t, err)
	assert.True(t, banned)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	banned, err = svc.IsBanned(ctx, m)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestService_CreatedBy(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, MustModelFor(&member{}), nil)
	ctx := context.Background()
	admin := newMember(t, db, "admin")
	m := newMember(t, db, "alice")

	record, err := svc.Ban(ctx, m, Attributes{CreatedBy: admin})
	require.NoError(t, err)
	require.NotNil(t, record.CreatedByType)
	assert.Equal(t, "member", *record.CreatedByType)
	assert.Equal(t, admin.ID, *record.CreatedByID)
}

func TestService_Validation(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, MustModelFor(&member{}), nil)
	ctx := context.Background()
	m := newMember(t, db, "alice")

	tests := []struct {
		name     string
		bannable Bannable
		attrs    Attributes
	}{
		{"nil bannable", nil, Attributes{}},
		{"nil pointer bannable", (*member)(nil), Attributes{}},
		{"nil pointer creator", m, Attributes{CreatedBy: (*member)(nil)}},
		{"unsaved bannable", &member{}, Attributes{}},
		{"comment too long", m, Attributes{Comment: strings.Repeat("x", 256)}},
		{"expiry in the past", m, Attributes{ExpiredAt: func() *time.Time { p := time.Now().Add(-time.Minute); return &p }()}},
		{"unsaved creator", m, Attributes{CreatedBy: &member{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Ban(ctx, tc.bannable, tc.attrs)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput), err.Error())
		})
	}

	dbtest.AssertTableEmpty(t, db, "bans")

	_, err := svc.IsBanned(ctx, (*member)(nil))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestService_FindUser(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, MustModelFor(&member{}), nil)
	m := newMember(t, db, "alice")

	found, err := svc.FindUser(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.(*member).Name)

	_, err = svc.FindUser(context.Background(), 9999)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func newApp(t *testing.T, env ...bootstrap.EnvironmentFunc) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.New(
		config.ServiceConfig{Name: "ban-test", Environment: "testing"},
		bootstrap.WithLogger(logger.NewNop()),
		bootstrap.WithFs(afero.NewMemMapFs()),
		bootstrap.WithBasePath("/app"),
		bootstrap.WithEnvironment(env...),
		bootstrap.WithProviders(NewServiceProvider()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Destroy(context.Background()) })
	return app
}

func TestServiceProvider_Defaults(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.Boot(context.Background()))

	model, err := UserModel(app.Config())
	require.NoError(t, err)
	assert.Equal(t, DefaultUserModel, model)

	assert.Equal(t, []string{PublishTag}, app.Publisher().Tags())
	assets := app.Publisher().Assets()
	require.Len(t, assets, 1)
	assert.Equal(t, app.MigrationsPath(), assets[0].Dest)
}

func TestServiceProvider_EnvironmentOverride(t *testing.T) {
	app := newApp(t, func(app *bootstrap.App) error {
		app.Config().Set(config.KeyAuthUserModel, MustModelFor(&member{}))
		return nil
	})
	require.NoError(t, app.Boot(context.Background()))

	model, err := UserModel(app.Config())
	require.NoError(t, err)
	assert.Equal(t, "member", model.Name())
}

func TestServiceProvider_RejectsForeignModel(t *testing.T) {
	app := newApp(t, func(app *bootstrap.App) error {
		app.Config().Set(config.KeyAuthUserModel, "App\\User")
		return nil
	})
	err := app.Boot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestUserModel_NotConfigured(t *testing.T) {
	_, err := UserModel(config.NewStore())
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotConfigured))
}

func TestServiceFrom(t *testing.T) {
	dir := t.TempDir()
	db := dbtest.NewComponent(dir).WithModels(&member{})
	app := newApp(t, func(app *bootstrap.App) error {
		app.Config().Set(config.KeyAuthUserModel, MustModelFor(&member{}))
		if err := app.RegisterComponent(db); err != nil {
			return err
		}
		return database.Register(app.Container, db)
	})
	require.NoError(t, app.Boot(context.Background()))

	svc, err := ServiceFrom(app)
	require.NoError(t, err)
	assert.Equal(t, "member", svc.UserModel().Name())
}

func TestServiceFrom_WithoutDatabase(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.Boot(context.Background()))

	_, err := ServiceFrom(app)
	require.Error(t, err)
}
