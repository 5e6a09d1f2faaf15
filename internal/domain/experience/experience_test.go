package experience

import (
	"testing"

	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entity.ExperienceRange
	}{
		{"Dash", "3-5", entity.Years(3, 5)},
		{"Plus", "5+", entity.AtLeast(5)},
		{"Plus with suffix", "10+ years", entity.AtLeast(10)},
		{"Comma", "3,5", entity.Years(3, 5)},
		{"Word separator", "2 to 4", entity.Years(2, 4)},
		{"Leading whitespace", "  0-1 year", entity.Years(0, 1)},
		{"Equal bounds", "4-4", entity.Years(4, 4)},
		{"Not a range", "not a range", entity.ExperienceRange{}},
		{"Bare number", "7", entity.ExperienceRange{}},
		{"Empty", "", entity.ExperienceRange{}},
		{"Leading text", "Less than 1 year", entity.ExperienceRange{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRange_MinAboveMax(t *testing.T) {
	_, err := ParseRange("10-2")
	require.Error(t, err)

	var rangeErr *apperr.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 10, rangeErr.Min)
	assert.Equal(t, 2, rangeErr.Max)
	assert.ErrorIs(t, err, apperr.ErrInvalidRange)
}

func TestRangesOverlap_Directed(t *testing.T) {
	assert.True(t, RangesOverlap(entity.AtLeast(5), entity.Years(3, 7)))
	assert.False(t, RangesOverlap(entity.AtLeast(8), entity.Years(3, 7)))
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name      string
		required  entity.ExperienceRange
		applicant entity.ExperienceRange
		want      bool
	}{
		{"Unknown required", entity.ExperienceRange{}, entity.Years(1, 2), false},
		{"Unknown applicant", entity.Years(1, 2), entity.ExperienceRange{}, false},
		{"Unknown applicant min with max", entity.Years(1, 2), entity.ExperienceRange{Max: intPtr(3)}, false},
		{"Both open, applicant above", entity.AtLeast(5), entity.AtLeast(6), true},
		{"Both open, applicant below", entity.AtLeast(5), entity.AtLeast(4), false},
		{"Open requirement reached", entity.AtLeast(5), entity.Years(5, 5), true},
		{"Open requirement not reached", entity.AtLeast(5), entity.Years(1, 4), false},
		{"Open applicant inside bucket", entity.Years(3, 5), entity.AtLeast(4), true},
		{"Open applicant at bucket min", entity.Years(3, 5), entity.AtLeast(3), true},
		{"Open applicant below bucket", entity.Years(3, 5), entity.AtLeast(2), false},
		{"Open applicant above bucket", entity.Years(0, 2), entity.AtLeast(8), true},
		{"Open applicant above closed requirement", entity.Years(3, 7), entity.AtLeast(8), true},
		{"Closed overlap", entity.Years(3, 5), entity.Years(4, 8), true},
		{"Closed contained", entity.Years(0, 10), entity.Years(2, 3), true},
		{"Closed touching", entity.Years(3, 5), entity.Years(5, 9), true},
		{"Closed disjoint below", entity.Years(3, 5), entity.Years(0, 2), false},
		{"Closed disjoint above", entity.Years(3, 5), entity.Years(6, 9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(tt.required, tt.applicant))
		})
	}
}
