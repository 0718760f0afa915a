// Package sim is an in-process notification service. It accepts toasts
// without displaying anything and lets callers drive their lifecycle
// events, which makes it the backend for tests and dry runs.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ariel-frischer/toastkit/internal/platform/dispatch"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Name is the backend name.
const Name = "sim"

// HRESULT reported when notifications are disabled for the application.
const codeNotificationsDisabled uint32 = 0x803E0115

// ErrNotShown is returned by the event drivers for requests the simulator
// never displayed.
var ErrNotShown = errors.New("request was not shown by the simulator")

// Backend simulates a platform notification service.
type Backend struct {
	log  zerolog.Logger
	disp *dispatch.Dispatcher

	mu          sync.Mutex
	ids         map[toast.Identity]bool
	shown       map[uuid.UUID]*toast.Request
	order       []*toast.Request
	suppressed  int
	suppress    bool
	disabled    bool
	autoDismiss time.Duration
	timers      []*time.Timer
	closed      bool
}

// Option configures the simulator.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// WithIdentities registers identities that Resolve accepts.
func WithIdentities(ids ...toast.Identity) Option {
	return func(b *Backend) {
		for _, id := range ids {
			b.ids[id] = true
		}
	}
}

// WithSuppression makes Show succeed without displaying anything and
// without raising Failed, like a platform focus mode does.
func WithSuppression() Option {
	return func(b *Backend) { b.suppress = true }
}

// WithNotificationsDisabled makes Show succeed and then deliver a Failed
// event, like a platform where the user turned notifications off.
func WithNotificationsDisabled() Option {
	return func(b *Backend) { b.disabled = true }
}

// WithAutoDismiss dismisses every shown toast with ReasonTimedOut after d.
func WithAutoDismiss(d time.Duration) Option {
	return func(b *Backend) { b.autoDismiss = d }
}

// New creates a simulator.
func New(opts ...Option) *Backend {
	b := &Backend{
		log:   zerolog.Nop(),
		ids:   make(map[toast.Identity]bool),
		shown: make(map[uuid.UUID]*toast.Request),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With().Str("backend", Name).Logger()
	b.disp = dispatch.New(b.log, 64)
	return b
}

func (b *Backend) Name() string { return Name }

// Register adds an identity after construction.
func (b *Backend) Register(id toast.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids[id] = true
}

// Resolve implements toast.Backend.
func (b *Backend) Resolve(_ context.Context, id toast.Identity) (toast.Sink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, toast.ErrClosed
	}
	if !b.ids[id] {
		return nil, fmt.Errorf("%w: %q is not registered with the simulator", toast.ErrUnknownIdentity, id)
	}
	return &sink{b: b, id: id}, nil
}

type sink struct {
	b  *Backend
	id toast.Identity
}

func (s *sink) Show(ctx context.Context, r *toast.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := s.b
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return toast.ErrClosed
	}

	log := b.log.With().Str("request", r.ID().String()).Str("app_id", string(s.id)).Logger()
	if b.suppress {
		b.suppressed++
		b.mu.Unlock()
		log.Debug().Msg("toast suppressed")
		return nil
	}

	b.shown[r.ID()] = r
	b.order = append(b.order, r)
	if b.autoDismiss > 0 && !b.disabled {
		b.timers = append(b.timers, time.AfterFunc(b.autoDismiss, func() {
			_ = b.Dismiss(r, toast.ReasonTimedOut)
		}))
	}
	disabled := b.disabled
	b.mu.Unlock()

	log.Debug().Str("title", r.Content().Title()).Msg("toast shown")
	if disabled {
		// accepted, then rejected asynchronously
		return b.disp.Enqueue(r, toast.RawEvent{
			Slot:    toast.SlotFailed,
			Payload: toast.FailedArgs{Code: codeNotificationsDisabled},
			At:      time.Now(),
		})
	}
	return nil
}

// Shown returns the displayed requests in submission order.
func (b *Backend) Shown() []*toast.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*toast.Request(nil), b.order...)
}

// Suppressed returns how many requests were accepted but not displayed.
func (b *Backend) Suppressed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.suppressed
}

// Activate simulates a click on the action carrying args. An empty args
// string is a click on the toast body.
func (b *Backend) Activate(r *toast.Request, args string) error {
	return b.Emit(r, toast.RawEvent{Slot: toast.SlotActivated, Payload: toast.ActivatedArgs{Arguments: args}})
}

// ActivateRaw delivers an activation with an arbitrary payload, which need
// not be toast.ActivatedArgs.
func (b *Backend) ActivateRaw(r *toast.Request, payload any) error {
	return b.Emit(r, toast.RawEvent{Slot: toast.SlotActivated, Payload: payload})
}

// Dismiss simulates the toast leaving the screen.
func (b *Backend) Dismiss(r *toast.Request, reason toast.DismissalReason) error {
	return b.Emit(r, toast.RawEvent{Slot: toast.SlotDismissed, Payload: toast.DismissedArgs{Reason: reason}})
}

// DismissUnreadable simulates a dismissal whose reason cannot be read.
func (b *Backend) DismissUnreadable(r *toast.Request, err error) error {
	return b.Emit(r, toast.RawEvent{Slot: toast.SlotDismissed, Payload: toast.DismissedArgs{Err: err}})
}

// Fail simulates a display failure with an HRESULT code.
func (b *Backend) Fail(r *toast.Request, code uint32) error {
	return b.Emit(r, toast.RawEvent{Slot: toast.SlotFailed, Payload: toast.FailedArgs{Code: code}})
}

// Emit queues raw for delivery on the dispatch goroutine.
func (b *Backend) Emit(r *toast.Request, raw toast.RawEvent) error {
	b.mu.Lock()
	_, ok := b.shown[r.ID()]
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return toast.ErrClosed
	}
	if !ok {
		return ErrNotShown
	}
	if raw.At.IsZero() {
		raw.At = time.Now()
	}
	return b.disp.Enqueue(r, raw)
}

// Flush waits until all queued events were delivered.
func (b *Backend) Flush(ctx context.Context) error {
	return b.disp.Flush(ctx)
}

// Close stops pending timers and the dispatcher.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, t := range b.timers {
		t.Stop()
	}
	b.mu.Unlock()

	b.disp.Close()
	return nil
}
