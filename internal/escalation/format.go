package escalation

import (
	"fmt"
	"time"
)

// formatSpan renders a duration as "5h02m", "31m" or "45s".
func formatSpan(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		h := d / time.Hour
		m := (d % time.Hour) / time.Minute
		return fmt.Sprintf("%dh%02dm", h, m)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

func validateTiers(name string, tiers []time.Duration) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%s: at least one tier is required", name)
	}
	for i, t := range tiers {
		if t <= 0 {
			return fmt.Errorf("%s: tier %d must be positive, got %s", name, i+1, t)
		}
		if i > 0 && t <= tiers[i-1] {
			return fmt.Errorf("%s: tiers must be strictly ascending (%s after %s)", name, t, tiers[i-1])
		}
	}
	return nil
}
