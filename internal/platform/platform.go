// Package platform opens the notification backend for the current system.
package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ariel-frischer/toastkit/internal/platform/freedesktop"
	"github.com/ariel-frischer/toastkit/internal/platform/sim"
	"github.com/ariel-frischer/toastkit/internal/platform/winrt"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Auto picks the native backend of the running OS.
const Auto = "auto"

// Names lists the accepted backend names.
var Names = []string{Auto, sim.Name, freedesktop.Name, winrt.Name}

// Backend is a toast backend that holds resources until closed.
type Backend interface {
	toast.Backend
	Close() error
}

// Options carry backend settings from configuration.
type Options struct {
	Log zerolog.Logger
	// Linger bounds how long the winrt host listens for events.
	Linger time.Duration
	// SimIdentities are registered with the simulator.
	SimIdentities []toast.Identity
	// SimAutoDismiss makes simulated toasts time out after the duration.
	SimAutoDismiss time.Duration
}

// Resolve maps a configured name to a concrete backend name for goos.
func Resolve(name, goos string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Auto:
		switch goos {
		case "windows":
			return winrt.Name, nil
		case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
			return freedesktop.Name, nil
		default:
			return "", fmt.Errorf("%w: no native toast backend for %s", toast.ErrUnsupported, goos)
		}
	case sim.Name:
		return sim.Name, nil
	case freedesktop.Name:
		return freedesktop.Name, nil
	case winrt.Name:
		return winrt.Name, nil
	default:
		return "", fmt.Errorf("unknown backend %q (valid: %s)", name, strings.Join(Names, ", "))
	}
}

// Open returns the named backend. The caller must Close it.
func Open(ctx context.Context, name string, opts Options) (Backend, error) {
	resolved, err := Resolve(name, runtime.GOOS)
	if err != nil {
		return nil, err
	}
	opts.Log.Debug().Str("backend", resolved).Msg("opening backend")

	switch resolved {
	case sim.Name:
		simOpts := []sim.Option{sim.WithLogger(opts.Log), sim.WithIdentities(opts.SimIdentities...)}
		if opts.SimAutoDismiss > 0 {
			simOpts = append(simOpts, sim.WithAutoDismiss(opts.SimAutoDismiss))
		}
		return sim.New(simOpts...), nil
	case freedesktop.Name:
		b, err := freedesktop.Open(ctx, freedesktop.WithLogger(opts.Log))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", toast.ErrUnsupported, err)
		}
		return b, nil
	default:
		b, err := winrt.Open(ctx, winrt.WithLogger(opts.Log), winrt.WithLinger(opts.Linger))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
