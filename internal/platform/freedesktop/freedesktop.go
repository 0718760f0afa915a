// Package freedesktop shows toasts through the org.freedesktop.Notifications
// service on the D-Bus session bus.
package freedesktop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/ariel-frischer/toastkit/internal/platform/dispatch"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Name is the backend name.
const Name = "freedesktop"

// ServerInfo is the result of GetServerInformation.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

type tracked struct {
	req       *toast.Request
	actions   map[string]string
	activated bool
}

// Backend talks to the notification server. Events from the server are
// matched to submitted requests by notification id and delivered on a
// single dispatch goroutine.
type Backend struct {
	log     zerolog.Logger
	conn    *dbus.Conn
	obj     dbus.BusObject
	disp    *dispatch.Dispatcher
	signals chan *dbus.Signal
	stop    chan struct{}
	done    chan struct{}

	// routing serializes routed signals and their enqueue; taken before mu.
	routing sync.Mutex

	mu     sync.Mutex
	active map[uint32]*tracked
	caps   []string
	closed bool
	// showing counts Notify calls in flight. While it is non-zero, signals
	// for unknown ids are held in pending, since the id may be the reply
	// of a call that has not returned yet.
	showing int
	pending map[uint32][]signalEvent
}

// maxPending bounds the ids held while Notify calls are in flight.
const maxPending = 32

// Option configures the backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// Open connects to the session bus and subscribes to the server's signals.
func Open(ctx context.Context, opts ...Option) (*Backend, error) {
	b := &Backend{
		log:     zerolog.Nop(),
		active:  make(map[uint32]*tracked),
		pending: make(map[uint32][]signalEvent),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With().Str("backend", Name).Logger()

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(iface),
		dbus.WithMatchObjectPath(objectPath),
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("subscribing to %s signals: %w", iface, err)
	}

	b.conn = conn
	b.obj = conn.Object(busName, objectPath)
	b.disp = dispatch.New(b.log, 64)
	b.signals = make(chan *dbus.Signal, 16)
	conn.Signal(b.signals)
	go b.loop()
	return b, nil
}

func (b *Backend) Name() string { return Name }

// ServerInformation queries the notification server.
func (b *Backend) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := b.obj.CallWithContext(ctx, iface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("querying notification server: %w", err)
	}
	return info, nil
}

// Resolve checks that a notification server is running. The server accepts
// any application name, so every non-empty identity resolves.
func (b *Backend) Resolve(ctx context.Context, id toast.Identity) (toast.Sink, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, toast.ErrClosed
	}

	info, err := b.ServerInformation(ctx)
	if err != nil {
		return nil, err
	}
	var caps []string
	if err := b.obj.CallWithContext(ctx, iface+".GetCapabilities", 0).Store(&caps); err != nil {
		return nil, fmt.Errorf("querying server capabilities: %w", err)
	}

	b.mu.Lock()
	b.caps = caps
	b.mu.Unlock()

	b.log.Debug().
		Str("server", info.Name).
		Str("vendor", info.Vendor).
		Str("spec", info.SpecVersion).
		Strs("caps", caps).
		Msg("notification server found")
	return &sink{b: b, id: id}, nil
}

type sink struct {
	b  *Backend
	id toast.Identity
}

func (s *sink) Show(ctx context.Context, r *toast.Request) error {
	b := s.b
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return toast.ErrClosed
	}
	n := buildNotify(s.id, r.Content(), b.caps)
	b.showing++
	b.mu.Unlock()

	var nid uint32
	err := b.obj.CallWithContext(ctx, iface+".Notify", 0,
		n.AppName, uint32(0), n.Icon, n.Summary, n.Body, n.Actions, n.Hints, n.Timeout,
	).Store(&nid)
	if err != nil {
		b.mu.Lock()
		b.doneShowing()
		b.mu.Unlock()
		return fmt.Errorf("calling Notify: %w", err)
	}

	b.register(nid, &tracked{req: r, actions: n.ActionArgs})
	b.log.Debug().Uint32("id", nid).Str("request", r.ID().String()).Msg("notification shown")
	return nil
}

// register tracks nid and replays the signals that arrived for it before
// Notify returned.
func (b *Backend) register(nid uint32, t *tracked) {
	b.routing.Lock()
	defer b.routing.Unlock()

	b.mu.Lock()
	b.active[nid] = t
	early := b.pending[nid]
	delete(b.pending, nid)
	b.doneShowing()
	b.mu.Unlock()

	for _, ev := range early {
		b.routeLocked(ev)
	}
}

func (b *Backend) doneShowing() {
	b.showing--
	if b.showing == 0 && len(b.pending) > 0 {
		b.pending = make(map[uint32][]signalEvent)
	}
}

func (b *Backend) loop() {
	defer close(b.done)
	for {
		select {
		case <-b.stop:
			return
		case sig, ok := <-b.signals:
			if !ok {
				return
			}
			if sig != nil {
				b.route(decodeSignal(sig.Name, sig.Body))
			}
		}
	}
}

func (b *Backend) route(ev signalEvent) {
	if ev.Kind == signalIgnored {
		return
	}
	b.routing.Lock()
	defer b.routing.Unlock()
	b.routeLocked(ev)
}

// routeLocked must be called with b.routing held.
func (b *Backend) routeLocked(ev signalEvent) {
	b.mu.Lock()
	t, ok := b.active[ev.ID]
	if !ok {
		if b.showing > 0 && (len(b.pending) < maxPending || b.pending[ev.ID] != nil) {
			b.pending[ev.ID] = append(b.pending[ev.ID], ev)
		}
		// otherwise another application's notification
		b.mu.Unlock()
		return
	}

	var raw toast.RawEvent
	switch ev.Kind {
	case signalAction:
		t.activated = true
		raw = toast.RawEvent{Slot: toast.SlotActivated}
		if args, known := t.actions[ev.ActionKey]; known {
			raw.Payload = toast.ActivatedArgs{Arguments: args}
		} else {
			raw.Payload = ev.ActionKey
		}
	case signalClosed:
		delete(b.active, ev.ID)
		if t.activated {
			b.mu.Unlock()
			return
		}
		raw = toast.RawEvent{Slot: toast.SlotDismissed, Payload: closedArgs(ev)}
	}
	b.mu.Unlock()

	raw.At = time.Now()
	if err := b.disp.Enqueue(t.req, raw); err != nil {
		b.log.Debug().Err(err).Uint32("id", ev.ID).Msg("dropping signal")
	}
}

func closedArgs(ev signalEvent) toast.DismissedArgs {
	if ev.Err != nil {
		return toast.DismissedArgs{Err: ev.Err}
	}
	reason, err := closeReason(ev.Reason)
	return toast.DismissedArgs{Reason: reason, Err: err}
}

// Close disconnects from the bus. Notifications already on screen stay.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stop)
	// closing the dispatcher first unblocks a route waiting on a full queue
	b.disp.Close()
	<-b.done
	b.conn.RemoveSignal(b.signals)
	return b.conn.Close()
}
