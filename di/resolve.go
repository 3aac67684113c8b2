package di

import "fmt"

// MustResolve resolves a component with type safety, panics on error.
//
// Example:
//
//	svc := di.MustResolve[*ban.Service](app.Container, di.Keys.BanService)
func MustResolve[T any](c Container, key string) T {
	result, err := Resolve[T](c, key)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// Resolve resolves a component with type safety, returns error on failure.
//
// Example:
//
//	db, err := di.Resolve[*gorm.DB](c, di.Keys.Database)
//	if err != nil {
//	    return nil, fmt.Errorf("ban service: %w", err)
//	}
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", key, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: component %s is %T, expected %T", key, instance, zero)
	}
	return result, nil
}

// TryResolve resolves a component, returns zero value and false if not found.
// Use this when a dependency is optional.
func TryResolve[T any](c Container, key string) (T, bool) {
	result, err := Resolve[T](c, key)
	return result, err == nil
}
