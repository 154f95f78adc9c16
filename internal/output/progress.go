package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// RatioBar renders a bar for elapsed/limit. The bar is full at ratio 1.0 and
// turns warning at 0.5 and error at 1.0.
// Example: "████████░░ 80%"
func RatioBar(elapsed, limit time.Duration, width int) string {
	if width <= 0 {
		width = 20
	}
	var ratio float64
	if limit > 0 {
		ratio = float64(elapsed) / float64(limit)
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case ratio >= 1.0:
		style = func(s string) string { return StyleError.Render(s) }
	case ratio >= 0.5:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleSuccess.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", ratio*100)))
}

// SeverityBadge returns a styled severity marker.
func SeverityBadge(s reminder.Severity) string {
	switch s {
	case reminder.SeverityHigh:
		return StyleError.Render("▲ HIGH")
	case reminder.SeverityMedium:
		return StyleWarning.Render("● MEDIUM")
	default:
		return StyleMuted.Render("○ LOW")
	}
}

// FormatDuration renders a duration as "5h02m", "31m" or "45s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", d/time.Hour, (d%time.Hour)/time.Minute)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
