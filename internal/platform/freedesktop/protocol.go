package freedesktop

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/ariel-frischer/toastkit/internal/toast"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	iface      = "org.freedesktop.Notifications"

	signalActionInvoked      = iface + ".ActionInvoked"
	signalNotificationClosed = iface + ".NotificationClosed"

	defaultActionKey = "default"

	shortTimeoutMs int32 = 7000
	longTimeoutMs  int32 = 25000
)

// notifyArgs are the arguments of one Notify call plus the mapping from
// action keys back to toast action arguments.
type notifyArgs struct {
	AppName    string
	Icon       string
	Summary    string
	Body       string
	Actions    []string
	Hints      map[string]dbus.Variant
	Timeout    int32
	ActionArgs map[string]string
}

// appName derives a D-Bus application name from an identity. Windows style
// identities keep only their executable name.
func appName(id toast.Identity) string {
	s := string(id)
	if i := strings.LastIndexAny(s, `\/`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".exe")
	if s == "" {
		return string(id)
	}
	return s
}

func buildNotify(id toast.Identity, c *toast.Content, caps []string) notifyArgs {
	n := notifyArgs{
		AppName:    appName(id),
		Summary:    c.Title(),
		Body:       c.Body(),
		Hints:      map[string]dbus.Variant{},
		Timeout:    -1,
		ActionArgs: map[string]string{},
	}

	if slices.Contains(caps, "body-markup") {
		n.Body = escapeMarkup(n.Body)
	}

	if slices.Contains(caps, "actions") {
		n.Actions = append(n.Actions, defaultActionKey, "")
		n.ActionArgs[defaultActionKey] = c.Launch()
		for i, a := range c.Actions() {
			key := "a" + strconv.Itoa(i)
			n.Actions = append(n.Actions, key, a.Label)
			n.ActionArgs[key] = a.Arguments
		}
	}

	if logo, ok := c.Image(toast.PlacementAppLogo); ok {
		n.Icon = imageRef(logo.Src)
	}
	if hero, ok := c.Image(toast.PlacementHero); ok {
		n.Hints["image-path"] = dbus.MakeVariant(imageRef(hero.Src))
	} else if inline, ok := c.Image(toast.PlacementInline); ok {
		n.Hints["image-path"] = dbus.MakeVariant(imageRef(inline.Src))
	}

	if audio, ok := c.Audio(); ok {
		switch {
		case audio.Silent:
			n.Hints["suppress-sound"] = dbus.MakeVariant(true)
		case toast.LocalPath(audio.Src) != "":
			n.Hints["sound-file"] = dbus.MakeVariant(toast.LocalPath(audio.Src))
		case audio.Src != "":
			n.Hints["sound-name"] = dbus.MakeVariant("message-new-instant")
		}
	}

	switch c.Scenario() {
	case "alarm", "incomingCall", "urgent":
		n.Hints["urgency"] = dbus.MakeVariant(byte(2))
	case "reminder":
		n.Hints["urgency"] = dbus.MakeVariant(byte(1))
		n.Hints["resident"] = dbus.MakeVariant(true)
	default:
		n.Hints["urgency"] = dbus.MakeVariant(byte(1))
	}

	switch c.Duration() {
	case toast.DurationShort:
		n.Timeout = shortTimeoutMs
	case toast.DurationLong:
		n.Timeout = longTimeoutMs
	}
	return n
}

// imageRef prefers a plain path for file URIs since servers accept both.
func imageRef(src string) string {
	if p := toast.LocalPath(src); p != "" {
		return p
	}
	return src
}

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeMarkup(s string) string { return markupEscaper.Replace(s) }

type signalKind int

const (
	signalIgnored signalKind = iota
	signalAction
	signalClosed
)

// signalEvent is a decoded notification server signal.
type signalEvent struct {
	Kind      signalKind
	ID        uint32
	ActionKey string
	Reason    uint32
	Err       error
}

// decodeSignal reads ActionInvoked(u id, s key) and
// NotificationClosed(u id, u reason). Unrelated signals are ignored. A
// NotificationClosed with an unreadable reason keeps its id and sets Err.
func decodeSignal(name string, body []any) signalEvent {
	switch name {
	case signalActionInvoked:
		if len(body) < 2 {
			return signalEvent{Kind: signalIgnored}
		}
		id, ok1 := body[0].(uint32)
		key, ok2 := body[1].(string)
		if !ok1 || !ok2 {
			return signalEvent{Kind: signalIgnored}
		}
		return signalEvent{Kind: signalAction, ID: id, ActionKey: key}
	case signalNotificationClosed:
		if len(body) < 1 {
			return signalEvent{Kind: signalIgnored}
		}
		id, ok := body[0].(uint32)
		if !ok {
			return signalEvent{Kind: signalIgnored}
		}
		ev := signalEvent{Kind: signalClosed, ID: id}
		if len(body) < 2 {
			ev.Err = fmt.Errorf("NotificationClosed without reason")
			return ev
		}
		reason, ok := body[1].(uint32)
		if !ok {
			ev.Err = fmt.Errorf("NotificationClosed reason has type %T", body[1])
			return ev
		}
		ev.Reason = reason
		return ev
	default:
		return signalEvent{Kind: signalIgnored}
	}
}

// closeReason maps the server's close reason codes.
func closeReason(code uint32) (toast.DismissalReason, error) {
	switch code {
	case 1:
		return toast.ReasonTimedOut, nil
	case 2:
		return toast.ReasonUserCanceled, nil
	case 3:
		return toast.ReasonApplicationHidden, nil
	case 4:
		return toast.ReasonUnknown, nil
	default:
		return toast.ReasonUnknown, fmt.Errorf("undefined close reason %d", code)
	}
}
