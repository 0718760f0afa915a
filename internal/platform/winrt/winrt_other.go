//go:build !windows

package winrt

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Backend is unavailable outside Windows.
type Backend struct{}

// Open always fails with toast.ErrUnsupported.
func Open(_ context.Context, opts ...Option) (*Backend, error) {
	_ = newOptions(opts)
	return nil, fmt.Errorf("%w: winrt toasts need windows, running on %s", toast.ErrUnsupported, runtime.GOOS)
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Resolve(context.Context, toast.Identity) (toast.Sink, error) {
	return nil, toast.ErrUnsupported
}

func (b *Backend) Close() error { return nil }
