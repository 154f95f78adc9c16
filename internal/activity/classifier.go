package activity

// DefaultChangeThreshold is the change rate at or above which a signal is
// considered active.
const DefaultChangeThreshold = 0.01

// Classifier fuses screen and camera change rates into a Status.
type Classifier struct {
	screenThreshold float64
	cameraThreshold float64
}

// ClassifierConfig configures the fusion thresholds. Zero values fall back to
// DefaultChangeThreshold.
type ClassifierConfig struct {
	ScreenThreshold float64
	CameraThreshold float64
}

// NewClassifier creates a Classifier.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	c := &Classifier{
		screenThreshold: DefaultChangeThreshold,
		cameraThreshold: DefaultChangeThreshold,
	}
	if cfg.ScreenThreshold > 0 {
		c.screenThreshold = cfg.ScreenThreshold
	}
	if cfg.CameraThreshold > 0 {
		c.cameraThreshold = cfg.CameraThreshold
	}
	return c
}

// Classify returns the status for one sample. Rules are applied in priority
// order: an active screen decides on its own and is never Idle; a static
// screen defers to an active camera; otherwise the user is Idle.
//
// A malformed sample yields Idle together with the validation error.
func (c *Classifier) Classify(s Sample) (Status, error) {
	if err := s.Validate(); err != nil {
		return Idle, err
	}

	if s.ScreenChangeRate >= c.screenThreshold {
		return screenStatus(s), nil
	}

	if s.Camera() >= c.cameraThreshold {
		if st, ok := s.CameraHint.Status(); ok {
			return st, nil
		}
		// Someone is visibly at the desk while the screen holds still.
		return Working, nil
	}

	return Idle, nil
}

// screenStatus splits an active screen into working or entertainment.
// An explicit upstream hint wins; otherwise dense (complex) scenes such as
// code and documents count as work.
func screenStatus(s Sample) Status {
	if st, ok := s.ScreenHint.Status(); ok {
		return st
	}
	if s.ComplexScene {
		return Working
	}
	return Entertainment
}
