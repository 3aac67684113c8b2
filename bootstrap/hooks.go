package bootstrap

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/cybercog/ban/errors"
)

// Hook is a lifecycle callback that runs during application boot or destruction.
type Hook func(ctx context.Context) error

// EnvironmentFunc adjusts the application before any provider registers.
// Test environments use it to override configuration.
type EnvironmentFunc func(app *App) error

// OnBooted registers hooks that run after every provider has booted.
func (a *App) OnBooted(hooks ...Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onBooted = append(a.onBooted, hooks...)
}

// BeforeDestroy registers a hook that runs when the application is
// destroyed, before components stop. Each new hook is placed in front of
// those already registered, so the most recently registered runs first.
// Registering after Destroy has started fails, since the hook would never run.
func (a *App) BeforeDestroy(hook Hook) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return errors.Conflict(fmt.Sprintf("application %s is already destroyed", a.Name))
	}
	a.beforeDestroy = append([]Hook{hook}, a.beforeDestroy...)
	return nil
}

// runHooks executes hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}

// runAllHooks executes every hook and aggregates their errors.
func runAllHooks(ctx context.Context, hooks []Hook) error {
	var result *multierror.Error
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("hook %d failed: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}
