// Package ui renders terminal output for the deck CLI.
package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent  = 74  // blue
	colorCmd     = 250 // light gray
	colorMuted   = 245 // medium gray
	colorSuccess = 71  // green
	colorWarn    = 179 // amber
	colorError   = 167 // red
)

var noColor bool

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderSuccess returns s in green.
func RenderSuccess(s string) string { return render(colorSuccess, s) }

// RenderWarn returns s in amber.
func RenderWarn(s string) string { return render(colorWarn, s) }

// RenderError returns s in red.
func RenderError(s string) string { return render(colorError, s) }

// RenderActive renders an application's active flag.
func RenderActive(active bool) string {
	if active {
		return RenderSuccess("active")
	}
	return RenderMuted("inactive")
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
