package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/toastkit/internal/progress"
)

func TestDetectTerminalCapabilities(t *testing.T) {
	tests := map[string]struct {
		env map[string]string
	}{
		"NO_COLOR disables color":  {env: map[string]string{"NO_COLOR": "1"}},
		"TOAST_ASCII forces ASCII": {env: map[string]string{"TOAST_ASCII": "1"}},
		"both NO_COLOR and ASCII":  {env: map[string]string{"NO_COLOR": "1", "TOAST_ASCII": "1"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			caps := progress.DetectTerminalCapabilities()
			if _, ok := tc.env["NO_COLOR"]; ok {
				assert.False(t, caps.SupportsColor)
			}
			if _, ok := tc.env["TOAST_ASCII"]; ok {
				assert.False(t, caps.SupportsUnicode)
			}
			if !caps.IsTTY {
				assert.Zero(t, caps.Width)
			}
		})
	}
}

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	u := progress.SelectSymbols(progress.TerminalCapabilities{SupportsUnicode: true})
	assert.Equal(t, "✓", u.Checkmark)
	assert.Equal(t, "✗", u.Failure)
	assert.Equal(t, "•", u.Info)
	assert.Equal(t, 14, u.SpinnerSet)

	a := progress.SelectSymbols(progress.TerminalCapabilities{})
	assert.Equal(t, "[OK]", a.Checkmark)
	assert.Equal(t, "[FAIL]", a.Failure)
	assert.Equal(t, "[..]", a.Info)
	assert.Equal(t, 9, a.SpinnerSet)
}
