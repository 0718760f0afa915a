package toast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Identity names the submitting application to the notification service,
// e.g. a Windows AppUserModelID or a D-Bus application name. It must be
// registered with the platform by installation tooling where required.
type Identity string

// Sink accepts requests for display on behalf of one identity.
type Sink interface {
	// Show hands r to the platform. It returns once the platform accepted
	// the request; it does not wait for display.
	Show(ctx context.Context, r *Request) error
}

// Backend is a platform notification service.
type Backend interface {
	Name() string
	// Resolve returns a sink for id or an error wrapping ErrUnknownIdentity
	// when the platform does not recognize it.
	Resolve(ctx context.Context, id Identity) (Sink, error)
}

// Observer is told about every submission and every delivered event.
// ObserveEvent runs on the dispatch goroutine.
type Observer interface {
	ObserveSubmit(ctx context.Context, r *Request, n *Notifier, err error)
	ObserveEvent(ctx context.Context, e Event)
}

// Notifier is a resolved identity bound to a backend.
type Notifier struct {
	id      Identity
	backend string
	sink    Sink
}

// Identity returns the identity the notifier was resolved from.
func (n *Notifier) Identity() Identity { return n.id }

// Backend returns the backend name.
func (n *Notifier) Backend() string { return n.backend }

// Client resolves identities and submits requests.
type Client struct {
	backend   Backend
	log       zerolog.Logger
	limiter   *rate.Limiter
	observers []Observer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger. Requests submitted through the client
// log listener failures with it.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithRateLimit bounds how often Submit hands requests to the platform.
// A zero or infinite limit disables limiting.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		if limit <= 0 || limit == rate.Inf {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// NewClient creates a client over b.
func NewClient(b Backend, opts ...ClientOption) *Client {
	c := &Client{backend: b, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve maps id to a notifier. It fails when id is empty or the backend
// does not recognize it.
func (c *Client) Resolve(ctx context.Context, id Identity) (*Notifier, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, platformErr("resolve", fmt.Errorf("%w: empty identity", ErrUnknownIdentity))
	}
	sink, err := c.backend.Resolve(ctx, id)
	if err != nil {
		return nil, platformErr("resolve", err)
	}
	c.log.Debug().Str("backend", c.backend.Name()).Str("app_id", string(id)).Msg("resolved notifier")
	return &Notifier{id: id, backend: c.backend.Name(), sink: sink}, nil
}

// Submit hands r to the platform and returns without waiting for display.
//
// A nil error only means the platform accepted the request. It does not mean
// the toast became visible: the platform may suppress it silently (focus
// modes, notifications disabled) and a Failed event may still arrive later.
// Submit never retries. A request can be submitted once; a second call
// returns ErrAlreadySubmitted.
func (c *Client) Submit(ctx context.Context, n *Notifier, r *Request) error {
	if n == nil || r == nil {
		return platformErr("submit", errors.New("nil notifier or request"))
	}
	if !r.markSubmitted(c.log) {
		return ErrAlreadySubmitted
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			r.unmarkSubmitted()
			return fmt.Errorf("waiting for submit slot: %w", err)
		}
	}

	for _, o := range c.observers {
		if _, err := r.Subscribe(SlotActivated, observe(o)); err != nil {
			return err
		}
		_, _ = r.Subscribe(SlotDismissed, observe(o))
		_, _ = r.Subscribe(SlotFailed, observe(o))
	}

	err := n.sink.Show(ctx, r)
	if err != nil {
		err = platformErr("submit", err)
	}
	for _, o := range c.observers {
		o.ObserveSubmit(ctx, r, n, err)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("request", r.ID().String()).Msg("submit failed")
		return err
	}
	c.log.Info().
		Str("request", r.ID().String()).
		Str("backend", n.backend).
		Str("title", r.Content().Title()).
		Msg("toast submitted")
	return nil
}

func observe(o Observer) Listener {
	return ListenerFunc(func(ctx context.Context, e Event) error {
		o.ObserveEvent(ctx, e)
		return nil
	})
}
