package di

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// RegistrationMode determines how a component should be resolved
type RegistrationMode int

const (
	Eager     RegistrationMode = iota // Initialize immediately on registration
	Lazy                              // Initialize on first resolve
	Singleton                         // Pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Container defines the interface for a dependency injection container
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterLazy(key string, constructor interface{}) error
	RegisterEager(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Resolve(key string) (interface{}, error)
	Has(key string) bool
	Close() error

	// Introspection
	Registrations() []RegistrationInfo
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

// UnifiedContainer is the default Container implementation.
type UnifiedContainer struct {
	components map[string]*registration
	singletons map[string]interface{}
	closed     bool
	mutex      sync.RWMutex
}

type registration struct {
	key         string
	constructor interface{}
	mode        RegistrationMode
	instance    interface{}
	initialized bool
	mutex       sync.Mutex
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &UnifiedContainer{
		components: make(map[string]*registration),
		singletons: make(map[string]interface{}),
	}
}

// Register registers a component with lazy loading (most common case)
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	return c.RegisterLazy(key, constructor)
}

// RegisterLazy registers a component that is constructed on first Resolve.
// A later registration under the same key replaces the earlier one.
func (c *UnifiedContainer) RegisterLazy(key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.singletons, key)
	c.components[key] = &registration{
		key:         key,
		constructor: constructor,
		mode:        Lazy,
	}
	return nil
}

// RegisterEager registers a component and constructs it immediately.
func (c *UnifiedContainer) RegisterEager(key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}

	instance, err := c.callConstructor(constructor, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize eager component '%s': %w", key, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.singletons, key)
	c.components[key] = &registration{
		key:         key,
		constructor: constructor,
		mode:        Eager,
		instance:    instance,
		initialized: true,
	}
	return nil
}

// RegisterSingleton registers a pre-created instance
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.components, key)
	c.singletons[key] = instance
	return nil
}

// Has reports whether key is bound.
func (c *UnifiedContainer) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if _, ok := c.singletons[key]; ok {
		return true
	}
	_, ok := c.components[key]
	return ok
}

// Resolve gets a component instance
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	return c.resolve(key, nil)
}

// resolve constructs key on behalf of the constructors in chain. A key
// already in chain is a cycle and fails before its lock is taken.
func (c *UnifiedContainer) resolve(key string, chain []string) (interface{}, error) {
	for _, k := range chain {
		if k == key {
			return nil, fmt.Errorf("circular dependency while resolving %s: %s",
				key, strings.Join(append(chain[:len(chain):len(chain)], key), " -> "))
		}
	}

	c.mutex.RLock()
	if c.closed {
		c.mutex.RUnlock()
		return nil, fmt.Errorf("container closed: cannot resolve %s", key)
	}
	if singleton, exists := c.singletons[key]; exists {
		c.mutex.RUnlock()
		return singleton, nil
	}
	reg, exists := c.components[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("component not registered: %s", key)
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if reg.initialized {
		return reg.instance, nil
	}

	instance, err := c.callConstructor(reg.constructor, append(chain[:len(chain):len(chain)], key))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lazy component '%s': %w", key, err)
	}

	reg.instance = instance
	reg.initialized = true
	return instance, nil
}

// scoped is the Container handed to constructors. It remembers which keys
// are being constructed so a cycle is reported instead of deadlocking.
type scoped struct {
	*UnifiedContainer
	chain []string
}

func (s scoped) Resolve(key string) (interface{}, error) {
	return s.UnifiedContainer.resolve(key, s.chain)
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

func checkConstructor(constructor interface{}) error {
	fnType := reflect.TypeOf(constructor)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", constructor)
	}
	if fnType.NumIn() > 1 {
		return fmt.Errorf("constructor must take at most one argument")
	}
	if fnType.NumIn() == 1 && fnType.In(0) != contextType && fnType.In(0) != containerType {
		return fmt.Errorf("constructor argument must be context.Context or di.Container, got %s", fnType.In(0))
	}
	switch fnType.NumOut() {
	case 1:
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return fmt.Errorf("constructor second result must be an error")
		}
	default:
		return fmt.Errorf("constructor must return either (instance) or (instance, error)")
	}
	return nil
}

func (c *UnifiedContainer) callConstructor(constructor interface{}, chain []string) (interface{}, error) {
	fn := reflect.ValueOf(constructor)
	fnType := fn.Type()

	var results []reflect.Value
	switch {
	case fnType.NumIn() == 0:
		results = fn.Call(nil)
	case fnType.In(0) == contextType:
		results = fn.Call([]reflect.Value{reflect.ValueOf(context.Background())})
	default:
		results = fn.Call([]reflect.Value{reflect.ValueOf(Container(scoped{c, chain}))})
	}

	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// Registrations returns info about all registered components, sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.components)+len(c.singletons))
	for key, reg := range c.components {
		reg.mutex.Lock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        reg.mode,
			Initialized: reg.initialized,
		})
		reg.mutex.Unlock()
	}
	for key := range c.singletons {
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        Singleton,
			Initialized: true,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Close closes every initialized lazy or eager instance implementing io.Closer.
// Singletons are owned by whoever registered them and are left open.
// Closing twice is a no-op.
func (c *UnifiedContainer) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var result *multierror.Error
	for key, reg := range c.components {
		if !reg.initialized || reg.instance == nil {
			continue
		}
		if closer, ok := reg.instance.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("close %s: %w", key, err))
			}
		}
	}
	return result.ErrorOrNil()
}
