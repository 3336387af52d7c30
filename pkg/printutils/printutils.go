// Package printutils contains wrappers for colored terminal output.
package printutils

import "github.com/fatih/color"

var (
	// ErrFprintf is a wrapper for printing errors.
	ErrFprintf = color.New(color.FgRed).FprintfFunc()
	// SuccessFprintf is a wrapper for printing successes.
	SuccessFprintf = color.New(color.FgGreen).FprintfFunc()
	// NeutralFprintf is a wrapper for printing neutral output.
	NeutralFprintf = color.New().FprintfFunc()
	// HighlightSprint is a wrapper for highlighting values.
	HighlightSprint = color.New(color.FgYellow).SprintFunc()
	// HighlightSprintf is a wrapper for highlighting formatted values.
	HighlightSprintf = color.New(color.FgYellow).SprintfFunc()
)
