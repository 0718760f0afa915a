package toast

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
)

// Listener receives lifecycle events. HandleEvent runs on the backend's
// dispatch goroutine, never on the goroutine that created or submitted the
// request, so any state it shares with other goroutines must be
// synchronized. The same listener may be invoked again before an earlier
// invocation's effects are observed elsewhere.
type Listener interface {
	HandleEvent(ctx context.Context, e Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, e Event) error

func (f ListenerFunc) HandleEvent(ctx context.Context, e Event) error { return f(ctx, e) }

// Token identifies one subscription. Tokens are never reused and only
// match subscriptions of the request that issued them.
type Token struct {
	req uuid.UUID
	seq uint64
}

// IsZero reports whether t was never issued.
func (t Token) IsZero() bool { return t.seq == 0 }

func (t Token) String() string { return fmt.Sprintf("%s#%d", t.req, t.seq) }

type subscription struct {
	tok      Token
	slot     Slot
	listener Listener
}

// Subscribe attaches l to slot and returns a new token. Every call adds a
// listener; earlier ones stay attached.
func (r *Request) Subscribe(slot Slot, l Listener) (Token, error) {
	if !slot.Valid() {
		return Token{}, platformErr("subscribe", fmt.Errorf("invalid slot %s", slot))
	}
	if l == nil {
		return Token{}, platformErr("subscribe", errors.New("nil listener"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	tok := Token{req: r.id, seq: r.seq}
	r.subs = append(r.subs, subscription{tok: tok, slot: slot, listener: l})
	return tok, nil
}

// Unsubscribe detaches the listener behind tok. Future events no longer
// reach it; other subscriptions are unaffected. It reports whether tok was
// attached. Unsubscribing does not retract a toast already on screen.
func (r *Request) Unsubscribe(tok Token) bool {
	if tok.req != r.id || tok.IsZero() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.tok == tok {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

// OnActivated subscribes fn to Activated events.
func (r *Request) OnActivated(fn func(context.Context, ActivatedEvent) error) (Token, error) {
	return r.Subscribe(SlotActivated, typed(fn))
}

// OnDismissed subscribes fn to Dismissed events.
func (r *Request) OnDismissed(fn func(context.Context, DismissedEvent) error) (Token, error) {
	return r.Subscribe(SlotDismissed, typed(fn))
}

// OnFailed subscribes fn to Failed events.
func (r *Request) OnFailed(fn func(context.Context, FailedEvent) error) (Token, error) {
	return r.Subscribe(SlotFailed, typed(fn))
}

func typed[T Event](fn func(context.Context, T) error) Listener {
	if fn == nil {
		return nil
	}
	return ListenerFunc(func(ctx context.Context, e Event) error {
		t, ok := As[T](e)
		if !ok {
			return nil
		}
		return fn(ctx, t)
	})
}

// Deliver dispatches a raw platform event to the listeners of its slot.
// Backends call it from their dispatch goroutine. Listener errors and panics
// are logged and never returned. Once a Failed event was delivered, later
// events for the request are dropped.
func (r *Request) Deliver(ctx context.Context, raw RawEvent) {
	log := r.logger()

	ev, err := decode(r, raw)
	if err != nil {
		log.Warn().Err(err).Msg("dropping event")
		return
	}

	r.mu.Lock()
	if r.failed {
		r.mu.Unlock()
		log.Debug().Stringer("slot", raw.Slot).Msg("dropping event after failure")
		return
	}
	if raw.Slot == SlotFailed {
		r.failed = true
	}
	var targets []Listener
	for _, s := range r.subs {
		if s.slot == raw.Slot {
			targets = append(targets, s.listener)
		}
	}
	r.mu.Unlock()

	log.Debug().Stringer("slot", raw.Slot).Int("listeners", len(targets)).Msg("delivering event")
	for _, l := range targets {
		r.invoke(ctx, l, ev)
	}
}

func (r *Request) invoke(ctx context.Context, l Listener, ev Event) {
	log := r.logger()
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Stringer("slot", ev.Slot()).
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("listener panicked")
		}
	}()
	if err := l.HandleEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Stringer("slot", ev.Slot()).Msg("listener returned error")
	}
}
