package toast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDismissedEvent_ReasonText(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ev   DismissedEvent
		want string
	}{
		"user canceled":      {ev: DismissedEvent{reason: ReasonUserCanceled}, want: "User Canceled"},
		"application hidden": {ev: DismissedEvent{reason: ReasonApplicationHidden}, want: "Application Hidden"},
		"timed out":          {ev: DismissedEvent{reason: ReasonTimedOut}, want: "Timed out"},
		"unknown":            {ev: DismissedEvent{reason: DismissalReason(42)}, want: "Unknown reason"},
		"accessor error":     {ev: DismissedEvent{reason: ReasonTimedOut, err: errors.New("boom")}, want: "Error"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ev.ReasonText())
		})
	}
}

func TestParseDismissalReason(t *testing.T) {
	t.Parallel()

	tests := map[string]DismissalReason{
		"UserCanceled":      ReasonUserCanceled,
		"usercanceled":      ReasonUserCanceled,
		"ApplicationHidden": ReasonApplicationHidden,
		"TimedOut":          ReasonTimedOut,
		" timed_out ":       ReasonTimedOut,
		"":                  ReasonUnknown,
		"Exploded":          ReasonUnknown,
	}

	for in, want := range tests {
		in, want := in, want
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, ParseDismissalReason(in))
		})
	}
}

func TestFailedEvent_Message(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ev   FailedEvent
		want string
	}{
		"access denied": {ev: FailedEvent{Code: 0x80070005}, want: "Access is denied."},
		"unspecified":   {ev: FailedEvent{Code: 0x80004005}, want: "Unspecified error"},
		"unknown code":  {ev: FailedEvent{Code: 0x8000FFFF}, want: "HRESULT 0x8000FFFF"},
		"zero code":     {ev: FailedEvent{}, want: "unknown failure"},
		"error wins":    {ev: FailedEvent{Code: 0x80070005, Err: errors.New("custom")}, want: "custom"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ev.Message())
		})
	}
}

func TestSlot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "activated", SlotActivated.String())
	assert.Equal(t, "dismissed", SlotDismissed.String())
	assert.Equal(t, "failed", SlotFailed.String())
	assert.Equal(t, "slot(0)", Slot(0).String())
	assert.True(t, SlotFailed.Valid())
	assert.False(t, Slot(4).Valid())
}

func TestAs(t *testing.T) {
	t.Parallel()

	var e Event = ActivatedEvent{Arguments: "x", HasArgs: true}

	a, ok := As[ActivatedEvent](e)
	assert.True(t, ok)
	assert.Equal(t, "x", a.Arguments)

	_, ok = As[DismissedEvent](e)
	assert.False(t, ok)

	_, ok = As[FailedEvent](nil)
	assert.False(t, ok)
}
