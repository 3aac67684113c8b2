package testutil_test

import (
	"context"
	"errors"

	"github.com/cybercog/ban/component"
	"github.com/cybercog/ban/testutil"
)

var _ testutil.TestComponent = (*mockComponent)(nil)

// mockComponent is an in-memory key/value TestComponent.
type mockComponent struct {
	name     string
	started  bool
	data     map[string]string
	startErr error
	resetErr error
}

func newMockComponent(name string) *mockComponent {
	return &mockComponent{name: name, data: map[string]string{}}
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.started = false
	return nil
}

func (m *mockComponent) Health(ctx context.Context) component.Health {
	if !m.started {
		return component.Health{Name: m.name, Status: component.StatusUnhealthy}
	}
	return component.Health{Name: m.name, Status: component.StatusHealthy}
}

func (m *mockComponent) Reset(ctx context.Context) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.data = map[string]string{}
	return nil
}

func (m *mockComponent) Snapshot(ctx context.Context) (interface{}, error) {
	snap := make(map[string]string, len(m.data))
	for k, v := range m.data {
		snap[k] = v
	}
	return snap, nil
}

func (m *mockComponent) Restore(ctx context.Context, snapshot interface{}) error {
	snap, ok := snapshot.(map[string]string)
	if !ok {
		return errors.New("invalid snapshot")
	}
	m.data = make(map[string]string, len(snap))
	for k, v := range snap {
		m.data[k] = v
	}
	return nil
}
