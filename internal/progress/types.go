// Package progress renders the wait for toast events: a spinner while
// waiting on a terminal, and one marked line per reported event.
package progress

// Outcome classifies a reported line.
type Outcome int

const (
	// OutcomeInfo is neutral progress, e.g. a dismissal.
	OutcomeInfo Outcome = iota
	// OutcomeSuccess marks an activation or a completed submit.
	OutcomeSuccess
	// OutcomeFailure marks a failed submit or a Failed event.
	OutcomeFailure
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeInfo:
		return "info"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// TerminalCapabilities encapsulates detected terminal features
type TerminalCapabilities struct {
	// IsTTY indicates whether stdout is a terminal (vs pipe/redirect)
	IsTTY bool
	// SupportsColor indicates whether terminal supports ANSI color codes
	SupportsColor bool
	// SupportsUnicode indicates whether terminal supports Unicode characters
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// ProgressSymbols defines the character set for visual indicators
type ProgressSymbols struct {
	// Checkmark is the success indicator ("✓" or "[OK]")
	Checkmark string
	// Failure is the failure indicator ("✗" or "[FAIL]")
	Failure string
	// Info is the neutral indicator ("•" or "[..]")
	Info string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}
