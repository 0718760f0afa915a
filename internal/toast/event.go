package toast

import (
	"fmt"
	"strings"
	"time"
)

// Slot identifies one of the three lifecycle events of a toast.
type Slot uint8

const (
	SlotActivated Slot = iota + 1
	SlotDismissed
	SlotFailed
)

func (s Slot) String() string {
	switch s {
	case SlotActivated:
		return "activated"
	case SlotDismissed:
		return "dismissed"
	case SlotFailed:
		return "failed"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	return s >= SlotActivated && s <= SlotFailed
}

// DismissalReason explains why a toast left the screen without activation.
type DismissalReason int

const (
	ReasonUnknown DismissalReason = iota
	ReasonUserCanceled
	ReasonApplicationHidden
	ReasonTimedOut
)

func (r DismissalReason) String() string {
	switch r {
	case ReasonUserCanceled:
		return "User Canceled"
	case ReasonApplicationHidden:
		return "Application Hidden"
	case ReasonTimedOut:
		return "Timed out"
	default:
		return "Unknown reason"
	}
}

// ParseDismissalReason accepts the platform names (UserCanceled,
// ApplicationHidden, TimedOut) case-insensitively. Anything else is
// ReasonUnknown.
func ParseDismissalReason(s string) DismissalReason {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "usercanceled", "user_canceled", "user canceled":
		return ReasonUserCanceled
	case "applicationhidden", "application_hidden", "application hidden":
		return ReasonApplicationHidden
	case "timedout", "timed_out", "timed out":
		return ReasonTimedOut
	default:
		return ReasonUnknown
	}
}

// RawEvent is what a backend hands to Request.Deliver. Payload is type
// erased: ActivatedArgs, DismissedArgs or FailedArgs depending on Slot.
type RawEvent struct {
	Slot    Slot
	Payload any
	At      time.Time
}

// ActivatedArgs is the payload of an activation.
type ActivatedArgs struct {
	Arguments string
	UserInput map[string]string
}

// DismissedArgs is the payload of a dismissal. A non-nil Err means the
// reason could not be read.
type DismissedArgs struct {
	Reason DismissalReason
	Err    error
}

// FailedArgs is the payload of a display failure.
type FailedArgs struct {
	Code uint32
	Err  error
}

// Event is delivered to listeners. Use As or a type switch to reach the
// slot specific type.
type Event interface {
	Slot() Slot
	Request() *Request
	Time() time.Time
}

type eventBase struct {
	req *Request
	at  time.Time
}

func (b eventBase) Request() *Request { return b.req }
func (b eventBase) Time() time.Time   { return b.at }

// ActivatedEvent fires when the user clicks the toast or one of its actions,
// from the popup or from the action center. HasArgs is false when the
// platform payload could not be read; Arguments is then empty.
type ActivatedEvent struct {
	eventBase
	Arguments string
	UserInput map[string]string
	HasArgs   bool
}

func (ActivatedEvent) Slot() Slot { return SlotActivated }

// DismissedEvent fires when the toast leaves the screen without activation.
// An Activated event may still follow for the same request.
type DismissedEvent struct {
	eventBase
	reason DismissalReason
	err    error
}

func (DismissedEvent) Slot() Slot { return SlotDismissed }

// Reason returns the dismissal reason or the error hit while reading it.
func (e DismissedEvent) Reason() (DismissalReason, error) {
	if e.err != nil {
		return ReasonUnknown, e.err
	}
	return e.reason, nil
}

// ReasonText never fails: an unreadable reason reads as "Error".
func (e DismissedEvent) ReasonText() string {
	r, err := e.Reason()
	if err != nil {
		return "Error"
	}
	return r.String()
}

// FailedEvent fires when the platform could not show the toast. No other
// event follows it for the same request.
type FailedEvent struct {
	eventBase
	Code uint32
	Err  error
}

func (FailedEvent) Slot() Slot { return SlotFailed }

var hresultText = map[uint32]string{
	0x80004001: "Not implemented",
	0x80004005: "Unspecified error",
	0x80070005: "Access is denied.",
	0x80070057: "The parameter is incorrect.",
	0x8007139F: "The group or resource is not in the correct state to perform the requested operation.",
	0x803E0115: "Notifications are disabled for this application.",
}

// Message returns human readable text for the failure.
func (e FailedEvent) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if msg, ok := hresultText[e.Code]; ok {
		return msg
	}
	if e.Code == 0 {
		return "unknown failure"
	}
	return fmt.Sprintf("HRESULT 0x%08X", e.Code)
}

// As returns e as T when it has that concrete type.
func As[T Event](e Event) (T, bool) {
	t, ok := e.(T)
	return t, ok
}

// decode turns a raw platform event into its typed form. Payloads of the
// wrong type never fail: they become the slot's "no data" value.
func decode(r *Request, raw RawEvent) (Event, error) {
	at := raw.At
	if at.IsZero() {
		at = time.Now()
	}
	base := eventBase{req: r, at: at}

	switch raw.Slot {
	case SlotActivated:
		args, ok := raw.Payload.(ActivatedArgs)
		if !ok {
			if p, isPtr := raw.Payload.(*ActivatedArgs); isPtr && p != nil {
				args, ok = *p, true
			}
		}
		if !ok {
			return ActivatedEvent{eventBase: base}, nil
		}
		return ActivatedEvent{eventBase: base, Arguments: args.Arguments, UserInput: copyInput(args.UserInput), HasArgs: true}, nil
	case SlotDismissed:
		args, ok := raw.Payload.(DismissedArgs)
		if !ok {
			return DismissedEvent{eventBase: base, err: fmt.Errorf("%w: %T", ErrPayloadType, raw.Payload)}, nil
		}
		return DismissedEvent{eventBase: base, reason: args.Reason, err: args.Err}, nil
	case SlotFailed:
		args, ok := raw.Payload.(FailedArgs)
		if !ok {
			return FailedEvent{eventBase: base, Err: fmt.Errorf("%w: %T", ErrPayloadType, raw.Payload)}, nil
		}
		return FailedEvent{eventBase: base, Code: args.Code, Err: args.Err}, nil
	default:
		return nil, fmt.Errorf("unknown event slot %d", raw.Slot)
	}
}

func copyInput(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
