package entity

import (
	"encoding/json"
	"fmt"
)

// ExperienceRange is a years-of-experience interval. A nil bound is unknown
// (Min) or open-ended (Max).
type ExperienceRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

func NewExperienceRange(min, max *int) ExperienceRange {
	return ExperienceRange{Min: min, Max: max}
}

// Years builds a closed range.
func Years(min, max int) ExperienceRange {
	return ExperienceRange{Min: &min, Max: &max}
}

// AtLeast builds an open-ended range.
func AtLeast(min int) ExperienceRange {
	return ExperienceRange{Min: &min}
}

func (r ExperienceRange) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

func (r ExperienceRange) String() string {
	switch {
	case r.Min == nil && r.Max == nil:
		return "unknown"
	case r.Max == nil:
		return fmt.Sprintf("%d+", *r.Min)
	case r.Min == nil:
		return fmt.Sprintf("?-%d", *r.Max)
	default:
		return fmt.Sprintf("%d-%d", *r.Min, *r.Max)
	}
}

// MarshalJSON emits the range as a two-element array, the shape form agents receive.
func (r ExperienceRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*int{r.Min, r.Max})
}
