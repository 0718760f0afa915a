package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Writer persists submissions and events. It implements toast.Observer.
// Events may reach the writer before the submission itself, so every write
// is an upsert keyed by request ID.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain.
	MaxEntries int

	log zerolog.Logger
	mu  sync.Mutex
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int, log zerolog.Logger) *Writer {
	return &Writer{
		StateDir:   stateDir,
		MaxEntries: maxEntries,
		log:        log,
	}
}

// ObserveSubmit records the outcome of a submit call.
func (w *Writer) ObserveSubmit(_ context.Context, r *toast.Request, n *toast.Notifier, err error) {
	w.update(r.ID().String(), func(e *HistoryEntry) {
		e.AppID = string(n.Identity())
		e.Backend = n.Backend()
		e.Title = r.Content().Title()
		if err != nil {
			e.Error = err.Error()
			raise(e, StatusRejected)
			return
		}
		raise(e, StatusSubmitted)
	})
}

// ObserveEvent appends e to its request's entry.
func (w *Writer) ObserveEvent(_ context.Context, ev toast.Event) {
	rec := EventRecord{Slot: ev.Slot().String(), At: ev.Time()}
	status := ""
	var failure string

	switch e := ev.(type) {
	case toast.ActivatedEvent:
		status = StatusActivated
		rec.Detail = e.Arguments
	case toast.DismissedEvent:
		status = StatusDismissed
		rec.Detail = e.ReasonText()
	case toast.FailedEvent:
		status = StatusFailed
		failure = e.Message()
		rec.Detail = failure
	}

	w.update(ev.Request().ID().String(), func(entry *HistoryEntry) {
		if entry.Title == "" {
			entry.Title = ev.Request().Content().Title()
		}
		entry.Events = append(entry.Events, rec)
		if failure != "" {
			entry.Error = failure
		}
		if entry.SettledAt == nil {
			at := rec.At
			entry.SettledAt = &at
		}
		raise(entry, status)
	})
}

func raise(e *HistoryEntry, status string) {
	if statusRank[status] > statusRank[e.Status] {
		e.Status = status
	}
}

// update loads the history, applies fn to the entry with id (creating it
// when missing), prunes and saves. Errors are logged, never returned: a
// broken history file must not affect notification delivery.
func (w *Writer) update(id string, fn func(*HistoryEntry)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.updateLocked(id, fn); err != nil {
		w.log.Warn().Err(err).Str("request", id).Msg("failed to record history")
	}
}

func (w *Writer) updateLocked(id string, fn func(*HistoryEntry)) error {
	history, err := LoadHistory(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	idx := -1
	for i := range history.Entries {
		if history.Entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		history.Entries = append(history.Entries, HistoryEntry{ID: id, Timestamp: time.Now()})
		idx = len(history.Entries) - 1
	}
	fn(&history.Entries[idx])

	// Prune oldest entries if over limit
	if w.MaxEntries > 0 && len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := SaveHistory(w.StateDir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
