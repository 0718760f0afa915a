// Mock backend for client and registry tests.

package toast

import (
	"context"
	"fmt"
	"sync"
)

// MockBackend is a Backend that records shown requests. Events are
// delivered by calling Emit, which runs Deliver on a separate goroutine to
// mirror a platform dispatch context.
type MockBackend struct {
	mu sync.Mutex

	// Configuration
	Known     map[Identity]bool
	ShowError error

	// Call tracking
	ResolveCalls []Identity
	Shown        []*Request
}

// NewMockBackend creates a mock that recognizes the given identities.
func NewMockBackend(ids ...Identity) *MockBackend {
	m := &MockBackend{Known: make(map[Identity]bool)}
	for _, id := range ids {
		m.Known[id] = true
	}
	return m
}

// WithShowError makes every Show fail with err.
func (m *MockBackend) WithShowError(err error) *MockBackend {
	m.ShowError = err
	return m
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Resolve(_ context.Context, id Identity) (Sink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveCalls = append(m.ResolveCalls, id)
	if !m.Known[id] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
	}
	return m, nil
}

func (m *MockBackend) Show(_ context.Context, r *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShowError != nil {
		return m.ShowError
	}
	m.Shown = append(m.Shown, r)
	return nil
}

// ShownCount returns how many requests were accepted.
func (m *MockBackend) ShownCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Shown)
}

// Emit delivers raw events to r in order on a new goroutine and waits for
// them to finish.
func Emit(r *Request, events ...RawEvent) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, ev := range events {
			r.Deliver(context.Background(), ev)
		}
	}()
	<-done
}

// MockObserver records observer callbacks.
type MockObserver struct {
	mu      sync.Mutex
	Submits []error
	Events  []Slot
}

func (o *MockObserver) ObserveSubmit(_ context.Context, _ *Request, _ *Notifier, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Submits = append(o.Submits, err)
}

func (o *MockObserver) ObserveEvent(_ context.Context, e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Events = append(o.Events, e.Slot())
}

func (o *MockObserver) snapshot() ([]error, []Slot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]error(nil), o.Submits...), append([]Slot(nil), o.Events...)
}
