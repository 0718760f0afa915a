package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/toastkit/internal/toast"
)

func newRequest(t *testing.T) *toast.Request {
	t.Helper()
	c, err := toast.Build(toast.Template{Texts: []string{"hi"}})
	require.NoError(t, err)
	r, err := toast.NewRequest(c)
	require.NoError(t, err)
	return r
}

func TestDispatcher_DeliversInOrderOffCallerGoroutine(t *testing.T) {
	t.Parallel()

	d := New(zerolog.Nop(), 4)
	defer d.Close()

	r := newRequest(t)
	var mu sync.Mutex
	var got []string
	_, err := r.OnActivated(func(_ context.Context, e toast.ActivatedEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Arguments)
		return nil
	})
	require.NoError(t, err)

	for _, a := range []string{"1", "2", "3", "4", "5", "6"} {
		require.NoError(t, d.Enqueue(r, toast.RawEvent{Slot: toast.SlotActivated, Payload: toast.ActivatedArgs{Arguments: a}}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, got)
}

func TestDispatcher_Close(t *testing.T) {
	t.Parallel()

	d := New(zerolog.Nop(), 1)
	d.Close()
	d.Close()

	err := d.Enqueue(newRequest(t), toast.RawEvent{Slot: toast.SlotActivated})
	assert.ErrorIs(t, err, toast.ErrClosed)
	assert.ErrorIs(t, d.Flush(context.Background()), toast.ErrClosed)
}

func TestDispatcher_CloseFromListener(t *testing.T) {
	t.Parallel()

	d := New(zerolog.Nop(), 4)
	r := newRequest(t)
	returned := make(chan struct{})
	var calls atomic.Int32
	_, err := r.OnActivated(func(_ context.Context, _ toast.ActivatedEvent) error {
		calls.Add(1)
		d.Close()
		close(returned)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, d.Enqueue(r, toast.RawEvent{Slot: toast.SlotActivated, Payload: toast.ActivatedArgs{Arguments: "x"}}))
	// still queued when the first listener closes the dispatcher
	_ = d.Enqueue(r, toast.RawEvent{Slot: toast.SlotActivated, Payload: toast.ActivatedArgs{Arguments: "y"}})

	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("Close inside a listener did not return")
	}
	select {
	case <-d.done:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery goroutine did not exit")
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, d.Enqueue(r, toast.RawEvent{Slot: toast.SlotActivated}), toast.ErrClosed)
	d.Close()
}

func TestDispatcher_CloseWaitsForDelivery(t *testing.T) {
	t.Parallel()

	d := New(zerolog.Nop(), 4)
	r := newRequest(t)
	started := make(chan struct{})
	var finished atomic.Bool
	_, err := r.OnActivated(func(_ context.Context, _ toast.ActivatedEvent) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, d.Enqueue(r, toast.RawEvent{Slot: toast.SlotActivated, Payload: toast.ActivatedArgs{}}))
	<-started
	d.Close()
	assert.True(t, finished.Load())
}

func TestGoroutineID(t *testing.T) {
	t.Parallel()

	own := goroutineID()
	require.NotZero(t, own)
	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	assert.NotEqual(t, own, <-other)
}
