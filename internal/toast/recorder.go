package toast

import (
	"context"
	"sync"
)

// Recorder collects delivered events and lets a host goroutine block until
// enough of them arrived. It is the bounded keep-alive primitive for short
// lived processes: the library never decides how long a process lives.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	changed chan struct{}
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{changed: make(chan struct{})}
}

// Attach subscribes the recorder to all three slots of r.
func (rec *Recorder) Attach(r *Request) error {
	for _, s := range []Slot{SlotActivated, SlotDismissed, SlotFailed} {
		if _, err := r.Subscribe(s, rec); err != nil {
			return err
		}
	}
	return nil
}

// HandleEvent implements Listener.
func (rec *Recorder) HandleEvent(_ context.Context, e Event) error {
	rec.mu.Lock()
	rec.events = append(rec.events, e)
	close(rec.changed)
	rec.changed = make(chan struct{})
	rec.mu.Unlock()
	return nil
}

// Events returns a copy of the events recorded so far, in delivery order.
func (rec *Recorder) Events() []Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Event(nil), rec.events...)
}

// Wait blocks until until reports true for the recorded events or ctx is
// done. It returns the events seen so far in both cases, with ctx.Err() on
// expiry. A nil until waits for ctx only.
func (rec *Recorder) Wait(ctx context.Context, until func([]Event) bool) ([]Event, error) {
	for {
		rec.mu.Lock()
		events := append([]Event(nil), rec.events...)
		changed := rec.changed
		rec.mu.Unlock()

		if until != nil && until(events) {
			return events, nil
		}
		select {
		case <-ctx.Done():
			return events, ctx.Err()
		case <-changed:
		}
	}
}

// UntilSettled is satisfied by an Activated or Failed event. A Dismissed
// event alone is not final because the toast may still be activated from
// the action center.
func UntilSettled(events []Event) bool {
	for _, e := range events {
		if s := e.Slot(); s == SlotActivated || s == SlotFailed {
			return true
		}
	}
	return false
}

// UntilAny is satisfied by any event.
func UntilAny(events []Event) bool { return len(events) > 0 }

// UntilSlot is satisfied once an event of slot s arrived.
func UntilSlot(s Slot) func([]Event) bool {
	return func(events []Event) bool {
		for _, e := range events {
			if e.Slot() == s {
				return true
			}
		}
		return false
	}
}

// UntilCount is satisfied once n events arrived.
func UntilCount(n int) func([]Event) bool {
	return func(events []Event) bool { return len(events) >= n }
}
