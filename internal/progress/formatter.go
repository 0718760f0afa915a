package progress

import (
	"strings"
)

// formatLine builds "<mark> Label: detail", omitting ": detail" when empty.
func formatLine(symbols ProgressSymbols, supportsColor bool, o Outcome, label, detail string) string {
	line := markFor(symbols, supportsColor, o) + " " + capitalize(label)
	if detail != "" {
		line += ": " + detail
	}
	return line
}

// capitalize returns the string with the first letter capitalized
func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func markFor(symbols ProgressSymbols, supportsColor bool, o Outcome) string {
	switch o {
	case OutcomeSuccess:
		return colorize(symbols.Checkmark, "\033[32m", supportsColor && symbols.Checkmark == "✓") // Green
	case OutcomeFailure:
		return colorize(symbols.Failure, "\033[31m", supportsColor && symbols.Failure == "✗") // Red
	default:
		return colorize(symbols.Info, "\033[36m", supportsColor && symbols.Info == "•") // Cyan
	}
}

func colorize(s, code string, on bool) string {
	if !on {
		return s
	}
	return code + s + "\033[0m"
}
