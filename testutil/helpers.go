package testutil

import (
	"context"
	"testing"
)

// CleanupFunc is a function that performs cleanup, typically stopping a component.
type CleanupFunc func() error

// Setup starts a test component and returns a cleanup function.
func Setup(component TestComponent) (CleanupFunc, error) {
	return SetupWithContext(context.Background(), component)
}

// SetupWithContext starts a test component with a custom context and returns a cleanup function.
func SetupWithContext(ctx context.Context, component TestComponent) (CleanupFunc, error) {
	if err := component.Start(ctx); err != nil {
		return nil, err
	}
	return func() error { return component.Stop(ctx) }, nil
}

// Teardown stops a test component.
func Teardown(component TestComponent) error {
	return component.Stop(context.Background())
}

// THelper provides testing.TB integration for easier test setup.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps a testing.TB to provide helper methods.
func T(t testing.TB) *THelper {
	return &THelper{
		t:   t,
		ctx: context.Background(),
	}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and stops it when the test ends.
func (h *THelper) Setup(component TestComponent) {
	h.t.Helper()
	if err := component.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", component.Name(), err)
	}

	h.t.Cleanup(func() {
		if err := component.Stop(context.Background()); err != nil {
			h.t.Errorf("failed to stop component %s: %v", component.Name(), err)
		}
	})
}

// Reset resets a component to its initial state.
func (h *THelper) Reset(component TestComponent) {
	h.t.Helper()
	if err := component.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", component.Name(), err)
	}
}

// Snapshot captures the current state of a component.
func (h *THelper) Snapshot(component TestComponent) interface{} {
	h.t.Helper()
	snapshot, err := component.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", component.Name(), err)
	}
	return snapshot
}

// Restore restores a component to a previously captured state.
func (h *THelper) Restore(component TestComponent, snapshot interface{}) {
	h.t.Helper()
	if err := component.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", component.Name(), err)
	}
}
