// Package dispatch runs toast event delivery on a single goroutine, the
// way a platform notification service invokes callbacks on its own
// dispatcher thread.
package dispatch

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ariel-frischer/toastkit/internal/toast"
)

type item struct {
	req   *toast.Request
	raw   toast.RawEvent
	flush chan struct{}
}

// Dispatcher delivers queued events in FIFO order from one goroutine.
type Dispatcher struct {
	log    zerolog.Logger
	queue  chan item
	done   chan struct{}
	closed chan struct{}
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
	// gid is the id of the delivery goroutine.
	gid atomic.Uint64
}

// New starts a dispatcher with the given queue capacity.
func New(log zerolog.Logger, capacity int) *Dispatcher {
	if capacity < 1 {
		capacity = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		log:    log,
		queue:  make(chan item, capacity),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	d.gid.Store(goroutineID())
	for {
		select {
		case <-d.closed:
			return
		case it := <-d.queue:
			select {
			case <-d.closed:
				return
			default:
			}
			if it.flush != nil {
				close(it.flush)
				continue
			}
			it.req.Deliver(d.ctx, it.raw)
		}
	}
}

// Enqueue schedules raw for delivery to r. It returns toast.ErrClosed after
// Close.
func (d *Dispatcher) Enqueue(r *toast.Request, raw toast.RawEvent) error {
	select {
	case <-d.closed:
		return toast.ErrClosed
	default:
	}
	select {
	case d.queue <- item{req: r, raw: raw}:
		return nil
	case <-d.closed:
		return toast.ErrClosed
	}
}

// Flush blocks until every event enqueued before the call was delivered.
func (d *Dispatcher) Flush(ctx context.Context) error {
	ch := make(chan struct{})
	select {
	case d.queue <- item{flush: ch}:
	case <-d.closed:
		return toast.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ch:
		return nil
	case <-d.done:
		return toast.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the dispatcher. Events still queued are dropped. Called from
// outside, Close waits for the delivery in progress to return. Called from a
// listener, it returns at once and the goroutine exits after that listener.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.closed)
		d.cancel()
		if d.inDelivery() {
			return
		}
		<-d.done
		if n := len(d.queue); n > 0 {
			d.log.Debug().Int("dropped", n).Msg("dispatcher closed with pending events")
		}
	})
}

// inDelivery reports whether the caller runs on the delivery goroutine.
func (d *Dispatcher) inDelivery() bool {
	id := d.gid.Load()
	return id != 0 && id == goroutineID()
}

// goroutineID parses the current goroutine id from the "goroutine N [" stack
// header. It returns 0 when the header cannot be read.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
