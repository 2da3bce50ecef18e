package ui

import (
	"fmt"
	"time"
)

// ANSI color codes
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"

	// ClearLine returns the cursor to column 0 and erases the line
	ClearLine = "\r\033[K"
)

// Green returns a green colored string
func Green(s string) string {
	return ansiGreen + s + ansiReset
}

// Red returns a red colored string
func Red(s string) string {
	return ansiRed + s + ansiReset
}

// Yellow returns a yellow colored string
func Yellow(s string) string {
	return ansiYellow + s + ansiReset
}

// Cyan returns a cyan colored string
func Cyan(s string) string {
	return ansiCyan + s + ansiReset
}

// Bold returns a bold string
func Bold(s string) string {
	return ansiBold + s + ansiReset
}

// FormatCountdown renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours, rem := total/3600, total%3600
	return fmt.Sprintf("%02d:%02d:%02d", hours, rem/60, rem%60)
}

// ShouldReport decides whether an unattended run prints the countdown:
// on every ten-minute mark and every second of the last five minutes.
func ShouldReport(remaining time.Duration) bool {
	if remaining <= 5*time.Minute {
		return true
	}
	total := int(remaining / time.Second)
	minutes, seconds := (total%3600)/60, total%60
	return minutes%10 == 0 && seconds == 0
}
