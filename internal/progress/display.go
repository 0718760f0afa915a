package progress

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Display shows a spinner while waiting and prints reported lines to out.
// Report may be called from listener goroutines.
type Display struct {
	mu           sync.Mutex
	capabilities TerminalCapabilities
	symbols      ProgressSymbols
	out          io.Writer
	spinner      *spinner.Spinner
	message      string
}

// NewDisplay creates a display writing report lines to out.
func NewDisplay(caps TerminalCapabilities, out io.Writer) *Display {
	return &Display{
		capabilities: caps,
		symbols:      SelectSymbols(caps),
		out:          out,
	}
}

// Start begins waiting with msg. On a TTY a spinner animates on stderr;
// otherwise msg is printed once.
func (d *Display) Start(msg string) error {
	if msg == "" {
		return errors.New("progress message cannot be empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.message = msg
	if !d.capabilities.IsTTY {
		fmt.Fprintln(d.out, msg)
		return nil
	}
	d.startSpinnerLocked()
	return nil
}

func (d *Display) startSpinnerLocked() {
	d.spinner = spinner.New(
		spinner.CharSets[d.symbols.SpinnerSet],
		100*time.Millisecond,
	)
	d.spinner.Writer = os.Stderr // keep stdout clean for event lines
	d.spinner.Suffix = " " + d.message
	d.spinner.Start()
}

// Report prints one marked line. A running spinner is paused around it.
func (d *Display) Report(o Outcome, label, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	running := d.spinner != nil
	if running {
		d.spinner.Stop()
	}
	fmt.Fprintln(d.out, formatLine(d.symbols, d.capabilities.SupportsColor, o, label, detail))
	if running {
		d.startSpinnerLocked()
	}
}

// Stop stops the spinner, if any.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
