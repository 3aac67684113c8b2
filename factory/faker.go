package factory

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Faker produces fake attribute values. Values meant to be unique carry the
// faker's sequence number.
type Faker struct {
	seq  atomic.Int64
	mu   sync.Mutex
	fake *gofakeit.Faker
}

// NewFaker creates a randomly seeded faker whose sequence starts at 1.
func NewFaker() *Faker {
	return NewSeededFaker(0)
}

// NewSeededFaker creates a faker that yields the same values for the same
// seed. A zero seed picks a random one.
func NewSeededFaker(seed uint64) *Faker {
	return &Faker{fake: gofakeit.New(seed)}
}

// Sequence returns the next value of the faker's counter.
func (f *Faker) Sequence() int64 {
	return f.seq.Add(1)
}

// UUID returns a random UUID string.
func (f *Faker) UUID() string {
	return uuid.NewString()
}

// Name returns a person's full name.
func (f *Faker) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fake.Name()
}

// Email returns a unique address in the example.test domain.
func (f *Faker) Email() string {
	f.mu.Lock()
	first, last := f.fake.FirstName(), f.fake.LastName()
	f.mu.Unlock()
	local := strings.ToLower(strings.Join(strings.Fields(first+" "+last), "."))
	return fmt.Sprintf("%s.%d@example.test", local, f.Sequence())
}

// Sentence returns a short phrase ending in a period.
func (f *Faker) Sentence() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.TrimRight(f.fake.Phrase(), ".") + "."
}
