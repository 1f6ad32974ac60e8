package agent

import "fmt"

// Confidences holds the fixed score attached to each outcome.
type Confidences struct {
	Solved    float64 `yaml:"solved" json:"solved"`
	Guidance  float64 `yaml:"guidance" json:"guidance"`
	Reformat  float64 `yaml:"reformat" json:"reformat"`
	Failed    float64 `yaml:"failed" json:"failed"`
	Unhandled float64 `yaml:"unhandled" json:"unhandled"`
}

// FailureCeiling bounds every score that reports a failure.
const FailureCeiling = 0.6

func DefaultConfidences() Confidences {
	return Confidences{
		Solved:    0.9,
		Guidance:  0.7,
		Reformat:  0.5,
		Failed:    0.3,
		Unhandled: 0.3,
	}
}

// Validate checks that scores lie in [0, 1] and that reformat, failed and
// unhandled stay below FailureCeiling.
func (c Confidences) Validate() error {
	scores := []struct {
		name  string
		value float64
	}{
		{"solved", c.Solved},
		{"guidance", c.Guidance},
		{"reformat", c.Reformat},
		{"failed", c.Failed},
		{"unhandled", c.Unhandled},
	}
	for _, s := range scores {
		if s.value < 0 || s.value > 1 {
			return fmt.Errorf("confidence %s must be in [0, 1], got %g", s.name, s.value)
		}
	}
	for _, s := range scores[2:] {
		if s.value >= FailureCeiling {
			return fmt.Errorf("confidence %s must be below %g, got %g", s.name, FailureCeiling, s.value)
		}
	}
	if c.Failed > c.Reformat {
		return fmt.Errorf("confidence failed (%g) must not exceed reformat (%g)", c.Failed, c.Reformat)
	}
	return nil
}
