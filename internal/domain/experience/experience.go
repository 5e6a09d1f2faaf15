// Package experience parses years-of-experience bucket labels and matches them against
// an applicant's declared range.
package experience

import (
	"regexp"
	"strconv"

	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/entity"
)

const (
	MinYears = 0
	MaxYears = 50
)

// Accepts "3-5", "3,5", "5+", "10+ years" and the word form "2 to 4".
var rangePattern = regexp.MustCompile(`^\s*(\d+)(?:\s+to\s+(\d+)|([^\d\s])(\d+)?)`)

// ParseRange converts a range label into bounds. Text that does not look like a range
// yields an unknown range and no error.
func ParseRange(text string) (entity.ExperienceRange, error) {
	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		return entity.ExperienceRange{}, nil
	}

	min, err := strconv.Atoi(m[1])
	if err != nil {
		return entity.ExperienceRange{}, nil
	}

	maxText := m[2]
	if maxText == "" {
		maxText = m[4]
	}
	if maxText == "" {
		return entity.AtLeast(min), nil
	}

	max, err := strconv.Atoi(maxText)
	if err != nil {
		return entity.AtLeast(min), nil
	}
	if min > max {
		return entity.ExperienceRange{}, &apperr.InvalidRangeError{Text: text, Min: min, Max: max}
	}
	return entity.Years(min, max), nil
}

// RangesOverlap reports whether an applicant's range qualifies for a required bucket.
// The check is directed: swapping the arguments can change the answer.
//
// An open-ended requirement ("5+") is met by any applicant range reaching it. An
// open-ended applicant ("8+") qualifies for every bucket starting at or below their
// minimum.
func RangesOverlap(required, applicant entity.ExperienceRange) bool {
	if required.Min == nil || applicant.Min == nil {
		return false
	}
	reqMin, appMin := *required.Min, *applicant.Min

	switch {
	case required.Max == nil && applicant.Max == nil:
		return appMin >= reqMin
	case required.Max == nil:
		return *applicant.Max >= reqMin
	case applicant.Max == nil:
		return reqMin <= appMin
	}

	reqMax, appMax := *required.Max, *applicant.Max
	return appMax >= reqMin && appMin <= reqMax
}
