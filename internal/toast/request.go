package toast

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Request is one notification: its content plus the listeners attached to
// its lifecycle events. A Request is submitted at most once.
type Request struct {
	id      uuid.UUID
	content *Content

	mu        sync.Mutex
	seq       uint64
	subs      []subscription
	submitted bool
	failed    bool
	log       zerolog.Logger
}

// NewRequest wraps content into a request. It allocates only; nothing is
// shown until the request is submitted.
func NewRequest(c *Content) (*Request, error) {
	if c == nil {
		return nil, platformErr("create", errors.New("nil content"))
	}
	return &Request{
		id:      uuid.New(),
		content: c,
		log:     zerolog.Nop(),
	}, nil
}

// ID returns the request's unique identifier.
func (r *Request) ID() uuid.UUID { return r.id }

// Content returns the request's content.
func (r *Request) Content() *Content { return r.content }

// Submitted reports whether the request was handed to a notifier.
func (r *Request) Submitted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitted
}

func (r *Request) markSubmitted(log zerolog.Logger) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitted {
		return false
	}
	r.submitted = true
	r.log = log.With().Str("request", r.id.String()).Logger()
	return true
}

func (r *Request) unmarkSubmitted() {
	r.mu.Lock()
	r.submitted = false
	r.mu.Unlock()
}

func (r *Request) logger() zerolog.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log
}
