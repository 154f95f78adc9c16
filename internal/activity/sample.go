package activity

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedSample is returned when a sample carries values outside their
// documented range.
var ErrMalformedSample = errors.New("malformed sample")

// Sample is one tick's raw evidence, built fresh by the polling driver.
type Sample struct {
	// ScreenChangeRate is the fraction of screen pixels that changed since
	// the previous frame, in [0,1].
	ScreenChangeRate float64
	// CameraChangeRate is the fraction of camera pixels that changed. It is
	// ignored unless CameraAvailable is set.
	CameraChangeRate float64
	CameraAvailable  bool

	// ComplexScene is the upstream edge-density verdict for the screen.
	ComplexScene bool

	ScreenHint Hint
	CameraHint Hint

	KeyPresses  uint
	MouseClicks uint
}

// Camera returns the effective camera change rate: 0 when no camera is
// attached.
func (s Sample) Camera() float64 {
	if !s.CameraAvailable {
		return 0
	}
	return s.CameraChangeRate
}

// Validate reports whether the sample's rates are finite and within [0,1].
func (s Sample) Validate() error {
	if err := checkRate("screen", s.ScreenChangeRate); err != nil {
		return err
	}
	if s.CameraAvailable {
		if err := checkRate("camera", s.CameraChangeRate); err != nil {
			return err
		}
	}
	return nil
}

func checkRate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s change rate %v outside [0,1]", ErrMalformedSample, name, v)
	}
	return nil
}
