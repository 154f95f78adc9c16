// Package activity fuses per-tick screen and camera signals into a single
// activity status.
package activity

import "fmt"

// Status is the inferred activity for one tick. The zero value is Idle.
type Status int

const (
	Idle Status = iota
	Working
	Entertainment
)

// AllStatuses lists every status in declaration order.
var AllStatuses = []Status{Idle, Working, Entertainment}

func (s Status) String() string {
	switch s {
	case Working:
		return "working"
	case Entertainment:
		return "entertainment"
	default:
		return "idle"
	}
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "idle":
		return Idle, nil
	case "working":
		return Working, nil
	case "entertainment":
		return Entertainment, nil
	default:
		return Idle, fmt.Errorf("unknown activity status %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Hint is an optional content-type verdict produced upstream by the screen
// or camera analyzer. HintNone means the analyzer offered no opinion.
type Hint int

const (
	HintNone Hint = iota
	HintWorking
	HintEntertainment
)

// Status maps a hint to the status it votes for. ok is false for HintNone.
func (h Hint) Status() (s Status, ok bool) {
	switch h {
	case HintWorking:
		return Working, true
	case HintEntertainment:
		return Entertainment, true
	default:
		return Idle, false
	}
}

// ParseHint accepts "" or "none", "working" and "entertainment".
func ParseHint(name string) (Hint, error) {
	switch name {
	case "", "none":
		return HintNone, nil
	case "working":
		return HintWorking, nil
	case "entertainment":
		return HintEntertainment, nil
	default:
		return HintNone, fmt.Errorf("unknown activity hint %q", name)
	}
}

func (h Hint) String() string {
	switch h {
	case HintWorking:
		return "working"
	case HintEntertainment:
		return "entertainment"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hint) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hint) UnmarshalText(text []byte) error {
	v, err := ParseHint(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}
