package factory

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cybercog/ban/errors"
)

type account struct {
	ID    uint `gorm:"primaryKey"`
	Name  string
	Email string `gorm:"uniqueIndex"`
}

func accounts(r *Registry) {
	Define(r, func(f *Faker) *account {
		return &account{Name: f.Name(), Email: f.Email()}
	})
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "factory.sqlite")), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&account{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestMake(t *testing.T) {
	r := NewRegistry()
	r.Load(accounts)

	assert.True(t, Has[account](r))
	assert.False(t, Has[string](r))
	assert.Equal(t, []string{"factory.account"}, r.Types())

	a, err := Make[account](r)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Name)
	assert.Contains(t, a.Email, "@example.test")

	b, err := Make(r, func(a *account) { a.Name = "Alice" })
	require.NoError(t, err)
	assert.Equal(t, "Alice", b.Name)
	assert.NotEqual(t, a.Email, b.Email)
}

func TestMake_Undefined(t *testing.T) {
	_, err := Make[account](NewRegistry())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	assert.Panics(t, func() { MustMake[account](NewRegistry()) })
}

func TestMakeMany_Unique(t *testing.T) {
	r := NewRegistry()
	r.Load(accounts)

	many, err := MakeMany[account](r, 5)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, a := range many {
		assert.False(t, seen[a.Email])
		seen[a.Email] = true
	}
}

func TestCreate(t *testing.T) {
	r := NewRegistry()
	r.Load(accounts)
	db := openDB(t)
	ctx := context.Background()

	a, err := Create[account](ctx, r, db)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	_, err = Create(ctx, r, db, func(x *account) { x.Email = a.Email })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAlreadyExists))

	created, err := CreateMany[account](ctx, r, db, 3)
	require.NoError(t, err)
	assert.Len(t, created, 3)

	var count int64
	require.NoError(t, db.Model(&account{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestFaker_ConcurrentSequence(t *testing.T) {
	f := NewFaker()
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := f.Sequence()
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 20)
	assert.Len(t, f.UUID(), 36)
	assert.NotEmpty(t, f.Sentence())
}

func TestFaker_SeededValues(t *testing.T) {
	a, b := NewSeededFaker(42), NewSeededFaker(42)
	assert.Equal(t, a.Name(), b.Name())
	assert.Equal(t, a.Sentence(), b.Sentence())
	assert.True(t, strings.HasSuffix(a.Sentence(), "."))

	first, second := a.Email(), a.Email()
	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^\S+\.\d+@example\.test$`, first)
}
