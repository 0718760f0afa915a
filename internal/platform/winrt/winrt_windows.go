//go:build windows

package winrt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ariel-frischer/toastkit/internal/platform/dispatch"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Backend runs one PowerShell host per shown toast.
type Backend struct {
	options
	exe    string
	disp   *dispatch.Dispatcher
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Open locates PowerShell and starts the event dispatcher.
func Open(_ context.Context, opts ...Option) (*Backend, error) {
	o := newOptions(opts)
	exe, err := exec.LookPath(o.shell)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", toast.ErrUnsupported, o.shell, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Backend{
		options: o,
		exe:     exe,
		disp:    dispatch.New(o.log, 64),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func (b *Backend) Name() string { return Name }

func (b *Backend) command(ctx context.Context, script string) *exec.Cmd {
	return exec.CommandContext(ctx, b.exe,
		"-ExecutionPolicy", "Bypass", "-NoProfile", "-NonInteractive",
		"-EncodedCommand", encodeCommand(script))
}

// Resolve checks that id is a registered AppUserModelID. Windows accepts
// unregistered ids in CreateToastNotifier and then silently shows nothing.
func (b *Backend) Resolve(ctx context.Context, id toast.Identity) (toast.Sink, error) {
	if b.isClosed() {
		return nil, toast.ErrClosed
	}
	script := fmt.Sprintf(
		`if (Get-StartApps | Where-Object { $_.AppID -eq '%s' }) { 'registered' } else { 'unknown' }`,
		escapeForPowerShell(string(id)))

	out, err := b.command(ctx, script).Output()
	if err != nil {
		return nil, fmt.Errorf("querying start apps: %w", err)
	}
	if strings.TrimSpace(string(out)) != "registered" {
		return nil, fmt.Errorf("%w: %q has no start menu entry", toast.ErrUnknownIdentity, id)
	}
	return &sink{b: b, id: id}, nil
}

type sink struct {
	b  *Backend
	id toast.Identity
}

// Show starts the host and returns once it reported the toast as shown.
// The host keeps running for the linger interval to relay events.
func (s *sink) Show(ctx context.Context, r *toast.Request) error {
	b := s.b
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return toast.ErrClosed
	}
	b.wg.Add(1)
	b.mu.Unlock()

	payload, err := json.Marshal(hostRequest{
		AppID:    string(s.id),
		XML:      r.Content().XML(),
		LingerMs: b.linger.Milliseconds(),
	})
	if err != nil {
		b.wg.Done()
		return fmt.Errorf("encoding host request: %w", err)
	}

	// bound to the backend, not to ctx: the host outlives Show
	cmd := b.command(b.ctx, hostScript)
	cmd.Stdin = bytes.NewReader(payload)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		b.wg.Done()
		return fmt.Errorf("creating host pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		b.wg.Done()
		return fmt.Errorf("starting powershell host: %w", err)
	}

	log := b.log.With().Str("request", r.ID().String()).Int("pid", cmd.Process.Pid).Logger()
	started := make(chan error, 1)
	go func() {
		defer b.wg.Done()
		readHost(stdout, log, started, func(raw toast.RawEvent) {
			if err := b.disp.Enqueue(r, raw); err != nil {
				log.Debug().Err(err).Msg("dropping host event")
			}
		})
		if err := cmd.Wait(); err != nil && b.ctx.Err() == nil {
			log.Debug().Err(err).Str("stderr", strings.TrimSpace(stderr.String())).Msg("powershell host exited")
		}
	}()

	select {
	case err := <-started:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close stops running hosts. Toasts already on screen stay, but their
// events are no longer observed.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	// closing the dispatcher first unblocks a reader waiting on a full queue
	b.disp.Close()
	b.wg.Wait()
	return nil
}
