package factory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/errors"
)

// Definitions is a set of factory definitions registered together.
type Definitions func(r *Registry)

// Registry holds factory definitions keyed by model type.
type Registry struct {
	faker *Faker
	defs  map[reflect.Type]interface{}
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry with its own Faker.
func NewRegistry() *Registry {
	return &Registry{
		faker: NewFaker(),
		defs:  make(map[reflect.Type]interface{}),
	}
}

// Faker returns the registry's faker.
func (r *Registry) Faker() *Faker { return r.faker }

// Load registers every definition set.
func (r *Registry) Load(sets ...Definitions) {
	for _, set := range sets {
		set(r)
	}
}

// Types returns the names of the defined types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for t := range r.defs {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}

// Define registers the factory for T, replacing any earlier definition.
func Define[T any](r *Registry, fn func(f *Faker) *T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[typeOf[T]()] = fn
}

// Has reports whether T has a definition.
func Has[T any](r *Registry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[typeOf[T]()]
	return ok
}

// Make builds a T without persisting it. Overrides run in order after the
// definition.
func Make[T any](r *Registry, overrides ...func(*T)) (*T, error) {
	r.mu.RLock()
	def, ok := r.defs[typeOf[T]()]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("factory", typeOf[T]().String())
	}

	m := def.(func(*Faker) *T)(r.faker)
	for _, override := range overrides {
		override(m)
	}
	return m, nil
}

// MakeMany builds n instances of T.
func MakeMany[T any](r *Registry, n int, overrides ...func(*T)) ([]*T, error) {
	result := make([]*T, 0, n)
	for i := 0; i < n; i++ {
		m, err := Make(r, overrides...)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// Create builds a T and inserts it.
func Create[T any](ctx context.Context, r *Registry, db *gorm.DB, overrides ...func(*T)) (*T, error) {
	m, err := Make(r, overrides...)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, database.FromDatabase(err, typeOf[T]().Name())
	}
	return m, nil
}

// CreateMany builds and inserts n instances of T in one transaction.
func CreateMany[T any](ctx context.Context, r *Registry, db *gorm.DB, n int, overrides ...func(*T)) ([]*T, error) {
	models, err := MakeMany(r, n, overrides...)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range models {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, database.FromDatabase(err, typeOf[T]().Name())
	}
	return models, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// MustMake is Make that panics, for table-driven test setup.
func MustMake[T any](r *Registry, overrides ...func(*T)) *T {
	m, err := Make(r, overrides...)
	if err != nil {
		panic(fmt.Sprintf("factory: %v", err))
	}
	return m
}
