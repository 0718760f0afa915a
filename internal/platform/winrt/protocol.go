// Package winrt shows toasts on Windows through a PowerShell host process
// that drives the Windows.UI.Notifications runtime classes and reports
// Activated, Dismissed and Failed events as JSON lines.
package winrt

import (
	"bufio"
	_ "embed"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rs/zerolog"

	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Name is the backend name.
const Name = "winrt"

// DefaultLinger is how long the host process keeps listening for events.
const DefaultLinger = 10 * time.Second

//go:embed host.ps1
var hostScript string

// hostRequest is written to the host's stdin.
type hostRequest struct {
	AppID    string `json:"app_id"`
	XML      string `json:"xml"`
	LingerMs int64  `json:"linger_ms"`
}

// hostMessage is one line of host output.
type hostMessage struct {
	Type        string            `json:"type"`
	Op          string            `json:"op,omitempty"`
	Arguments   *string           `json:"arguments,omitempty"`
	UserInput   map[string]string `json:"user_input,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	ReasonError string            `json:"reason_error,omitempty"`
	Code        int64             `json:"code,omitempty"`
	Message     string            `json:"message,omitempty"`
}

type options struct {
	log    zerolog.Logger
	linger time.Duration
	shell  string
}

// Option configures the backend.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithLinger sets how long each host process waits for events after the
// toast was shown. Events after that are not observed.
func WithLinger(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.linger = d
		}
	}
}

// WithShell overrides the PowerShell executable.
func WithShell(path string) Option {
	return func(o *options) { o.shell = path }
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop(), linger: DefaultLinger, shell: "powershell"}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With().Str("backend", Name).Logger()
	return o
}

func decodeLine(line []byte) (hostMessage, error) {
	var msg hostMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return hostMessage{}, fmt.Errorf("decoding host output %q: %w", line, err)
	}
	if msg.Type == "" {
		return hostMessage{}, fmt.Errorf("host output without type: %q", line)
	}
	return msg, nil
}

// toRaw converts an event message. Messages that are not events report
// false. An activation without readable arguments keeps a nil payload.
func toRaw(msg hostMessage) (toast.RawEvent, bool) {
	now := time.Now()
	switch msg.Type {
	case "activated":
		raw := toast.RawEvent{Slot: toast.SlotActivated, At: now}
		if msg.Arguments != nil {
			raw.Payload = toast.ActivatedArgs{Arguments: *msg.Arguments, UserInput: msg.UserInput}
		}
		return raw, true
	case "dismissed":
		args := toast.DismissedArgs{Reason: toast.ParseDismissalReason(msg.Reason)}
		if msg.ReasonError != "" {
			args = toast.DismissedArgs{Err: errors.New(msg.ReasonError)}
		}
		return toast.RawEvent{Slot: toast.SlotDismissed, Payload: args, At: now}, true
	case "failed":
		args := toast.FailedArgs{Code: uint32(msg.Code)}
		if msg.Message != "" {
			args.Err = errors.New(strings.TrimSpace(msg.Message))
		}
		return toast.RawEvent{Slot: toast.SlotFailed, Payload: args, At: now}, true
	default:
		return toast.RawEvent{}, false
	}
}

// hostError converts an error message into the platform error it reports.
func hostError(msg hostMessage) error {
	op := msg.Op
	if op == "" {
		op = "submit"
	}
	text := strings.TrimSpace(msg.Message)
	if text == "" {
		text = "powershell host failed"
	}
	return &toast.PlatformError{Op: op, Code: uint32(msg.Code), Err: errors.New(text)}
}

// readHost consumes host output. The first "shown" or "error" message is
// sent on started; event messages after it go to deliver. started always
// receives exactly one value: the error, or nil once shown.
func readHost(r io.Reader, log zerolog.Logger, started chan<- error, deliver func(toast.RawEvent)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	reported := false
	report := func(err error) {
		if !reported {
			reported = true
			started <- err
		}
	}
	defer func() {
		if err := sc.Err(); err != nil {
			report(fmt.Errorf("reading host output: %w", err))
		}
		report(errors.New("powershell host exited before showing the toast"))
	}()

	for sc.Scan() {
		line := sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		msg, err := decodeLine(line)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring host output")
			continue
		}
		switch msg.Type {
		case "shown":
			report(nil)
		case "error":
			report(hostError(msg))
			return
		default:
			raw, ok := toRaw(msg)
			if !ok {
				log.Debug().Str("type", msg.Type).Msg("unknown host message")
				continue
			}
			// an event implies the toast was handed over
			report(nil)
			deliver(raw)
		}
	}
}

// encodeCommand encodes a script for powershell -EncodedCommand, which
// avoids command line quoting of the script body.
func encodeCommand(script string) string {
	units := utf16.Encode([]rune(script))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// escapeForPowerShell escapes a value for a single-quoted PowerShell string.
func escapeForPowerShell(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c == '\'' || c == '‘' || c == '’' {
			b.WriteRune(c)
		}
		b.WriteRune(c)
	}
	return b.String()
}
