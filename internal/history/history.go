// Package history records submitted toasts and the events they produced.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// HistoryFileName is the name of the history file.
	HistoryFileName = "history.yaml"
	// BackupSuffix is the suffix for backup files when corruption is detected.
	BackupSuffix = ".backup"
)

// Status constants for history entries.
const (
	// StatusSubmitted indicates the platform accepted the toast.
	StatusSubmitted = "submitted"
	// StatusRejected indicates the submit call itself failed.
	StatusRejected = "rejected"
	// StatusDismissed indicates the toast left the screen without activation.
	StatusDismissed = "dismissed"
	// StatusActivated indicates the user clicked the toast or an action.
	StatusActivated = "activated"
	// StatusFailed indicates the platform reported it could not show the toast.
	StatusFailed = "failed"
)

// statusRank orders statuses so a later, weaker event never overwrites a
// stronger one (an activation after dismissal stays activated).
var statusRank = map[string]int{
	StatusSubmitted: 1,
	StatusDismissed: 2,
	StatusActivated: 3,
	StatusFailed:    4,
	StatusRejected:  4,
}

// EventRecord is one event delivered for a toast.
type EventRecord struct {
	Slot   string    `yaml:"slot"`
	At     time.Time `yaml:"at"`
	Detail string    `yaml:"detail,omitempty"`
}

// HistoryEntry represents a single toast submission.
type HistoryEntry struct {
	// ID is the request ID.
	ID string `yaml:"id"`
	// Timestamp is when the entry was first written.
	Timestamp time.Time `yaml:"timestamp"`
	AppID     string    `yaml:"app_id,omitempty"`
	Backend   string    `yaml:"backend,omitempty"`
	Title     string    `yaml:"title,omitempty"`
	// Status is the strongest outcome seen so far.
	Status string `yaml:"status"`
	// Error holds the submit error or failure message.
	Error string `yaml:"error,omitempty"`
	// SettledAt is set by the first activation, dismissal or failure.
	SettledAt *time.Time    `yaml:"settled_at,omitempty"`
	Events    []EventRecord `yaml:"events,omitempty"`
}

// HistoryFile represents the YAML file containing all history entries.
type HistoryFile struct {
	// Entries is ordered oldest first.
	Entries []HistoryEntry `yaml:"entries"`
}

// DefaultStateDir returns ~/.toastkit/state.
func DefaultStateDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".toastkit", "state"), nil
}

// LoadHistory loads the history file from the given state directory.
// Returns empty history if file doesn't exist.
// Handles corrupted files by backing them up and creating a fresh history.
func LoadHistory(stateDir string) (*HistoryFile, error) {
	historyPath := filepath.Join(stateDir, HistoryFileName)

	data, err := os.ReadFile(historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &HistoryFile{Entries: []HistoryEntry{}}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history HistoryFile
	if err := yaml.Unmarshal(data, &history); err != nil {
		if backupErr := backupCorruptedFile(historyPath); backupErr != nil {
			return nil, fmt.Errorf("backing up corrupted history file: %w", backupErr)
		}
		return &HistoryFile{Entries: []HistoryEntry{}}, nil
	}

	if history.Entries == nil {
		history.Entries = []HistoryEntry{}
	}

	return &history, nil
}

func backupCorruptedFile(path string) error {
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return fmt.Errorf("renaming corrupted file to backup: %w", err)
	}
	return nil
}

// SaveHistory writes the history file atomically, creating the state
// directory if needed.
func SaveHistory(stateDir string, history *HistoryFile) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	historyPath := filepath.Join(stateDir, HistoryFileName)
	tmpPath := historyPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp history file: %w", err)
	}

	if err := os.Rename(tmpPath, historyPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp history file: %w", err)
	}

	return nil
}

// ClearHistory removes all entries from the history file.
func ClearHistory(stateDir string) error {
	return SaveHistory(stateDir, &HistoryFile{Entries: []HistoryEntry{}})
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func Recent(stateDir string, limit int) ([]HistoryEntry, error) {
	h, err := LoadHistory(stateDir)
	if err != nil {
		return nil, err
	}
	n := len(h.Entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(h.Entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Entries[i])
	}
	return out, nil
}
