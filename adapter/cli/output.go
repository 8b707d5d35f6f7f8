package cli

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// RuleWidth is the width of section rules in command output.
const RuleWidth = 50

// Heading prints a title between two double rules.
func Heading(out io.Writer, title string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", RuleWidth))
	fmt.Fprintf(out, "  %s\n", title)
	fmt.Fprintln(out, strings.Repeat("=", RuleWidth))
}

// Section prints a subtitle above a single rule.
func Section(out io.Writer, title string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", title)
	fmt.Fprintln(out, strings.Repeat("-", RuleWidth))
}

// FormatClock renders a countdown as "MM:SS".
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatElapsed renders a duration as "1h 2m 3s", dropping leading zero units.
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// ProgressBar renders progress in [0, 1] as a bar of the given width.
func ProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
}

// Percent formats a 0..100 value.
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
