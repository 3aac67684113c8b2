package config

import (
	"sync"

	"github.com/spf13/viper"
)

// Store is the configuration repository of a single application instance.
// Each Store owns its own viper instance, so values set for one application
// never leak into another.
type Store struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{v: viper.New()}
}

// NewStoreFrom creates a store seeded with values. Nested maps become dotted keys.
func NewStoreFrom(values map[string]interface{}) *Store {
	s := NewStore()
	for k, val := range values {
		s.v.Set(k, val)
	}
	return s
}

// Set overrides the value for key. Overrides win over defaults regardless of
// the order in which they were declared.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

// SetDefault declares the value used when key has not been Set.
func (s *Store) SetDefault(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetDefault(key, value)
}

// Get returns the value for key, or nil.
func (s *Store) Get(key string) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Get(key)
}

// GetString returns the value for key cast to a string.
func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(key)
}

// IsSet reports whether key has a value, either set or defaulted.
func (s *Store) IsSet(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.IsSet(key)
}

// AllKeys returns every known key in dotted form.
func (s *Store) AllKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.AllKeys()
}

// Lookup returns the value for key asserted to T.
func Lookup[T any](s *Store, key string) (T, bool) {
	v, ok := s.Get(key).(T)
	return v, ok
}
