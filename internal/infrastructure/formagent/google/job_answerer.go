package google

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/entity"
	"form-applier/internal/domain/experience"
	"form-applier/internal/domain/resolver"
)

const (
	labelCutoff  = 0.4
	optionCutoff = resolver.DefaultCutoff
)

// NoOverlapPolicy decides what a choice question gets when no option fits the value.
type NoOverlapPolicy int

const (
	// FallbackFirstOption selects the first option.
	FallbackFirstOption NoOverlapPolicy = iota
	// FailOnNoOverlap leaves the question unanswered and fails the record.
	FailOnNoOverlap
)

func (p NoOverlapPolicy) String() string {
	if p == FailOnNoOverlap {
		return "fail"
	}
	return "fallback-first-option"
}

// ErrNoMatchingOption is returned under FailOnNoOverlap.
var ErrNoMatchingOption = errors.New("no matching option")

// JobFormAnswerer answers job application questions: free text from the resolved
// applicant field, experience brackets by range overlap, and single-option
// acknowledgements without a label by clicking them.
type JobFormAnswerer struct {
	policy NoOverlapPolicy
}

func NewJobFormAnswerer(policy NoOverlapPolicy) *JobFormAnswerer {
	return &JobFormAnswerer{policy: policy}
}

func (j *JobFormAnswerer) Answer(
	ctx context.Context,
	question output.ElementPort,
	schema entity.FormQuestionSchema,
	data entity.FormData,
) error {
	if !schema.HasLabel() {
		if len(schema.Options) == 1 {
			return clickOption(ctx, question, schema.Options[0])
		}
		return errors.New("question has no label")
	}

	label := schema.LabelText()
	match, ok := resolver.First(data, strings.ToLower(label), labelCutoff)
	if !ok || isEmpty(match.Value) {
		return fmt.Errorf("%w for %q", ErrNoValue, label)
	}

	switch schema.Type {
	case entity.QuestionText, entity.QuestionLongText:
		return fillText(ctx, question, schema, match.Value)
	case entity.QuestionRadio, entity.QuestionMultipleChoice:
		return j.choose(ctx, question, schema, match.Value)
	default:
		return fmt.Errorf("unsupported question type %q", schema.Type)
	}
}

func fillText(ctx context.Context, question output.ElementPort, schema entity.FormQuestionSchema, value any) error {
	if schema.InputLocator == nil || *schema.InputLocator == "" {
		return fmt.Errorf("no input found for question %q", schema.LabelText())
	}
	input, found, err := question.Query(ctx, *schema.InputLocator)
	if err != nil {
		return fmt.Errorf("query input: %w", err)
	}
	if !found {
		return fmt.Errorf("input element not found for question %q", schema.LabelText())
	}
	return input.Fill(ctx, FormatValue(value))
}

func (j *JobFormAnswerer) choose(ctx context.Context, question output.ElementPort, schema entity.FormQuestionSchema, value any) error {
	if len(schema.Options) == 0 {
		return fmt.Errorf("no options found for question %q", schema.LabelText())
	}

	if option, ok := pickOption(schema.Options, value); ok {
		return clickOption(ctx, question, option)
	}

	if j.policy == FailOnNoOverlap {
		return fmt.Errorf("%w for %q with value %s", ErrNoMatchingOption, schema.LabelText(), FormatValue(value))
	}
	return clickOption(ctx, question, schema.Options[0])
}

// pickOption returns the option compatible with value. Experience ranges match the first
// option whose label parses to an overlapping range; other values match the option
// label most similar to their text.
func pickOption(options []entity.QuestionOption, value any) (entity.QuestionOption, bool) {
	if applicantRange, ok := value.(entity.ExperienceRange); ok {
		return pickBucket(options, applicantRange)
	}

	text := strings.ToLower(FormatValue(value))
	best, bestRatio := -1, optionCutoff
	for i, option := range options {
		if r := resolver.Ratio(text, strings.ToLower(option.Label)); r >= bestRatio && (best < 0 || r > bestRatio) {
			best, bestRatio = i, r
		}
	}
	if best < 0 {
		return entity.QuestionOption{}, false
	}
	return options[best], true
}

// pickBucket selects the experience option for applicant. An open-ended applicant
// ("8+") qualifies for every lower bucket, so the bucket containing their minimum is
// preferred over the first qualifying one.
func pickBucket(options []entity.QuestionOption, applicant entity.ExperienceRange) (entity.QuestionOption, bool) {
	first := -1
	for i, option := range options {
		required, err := experience.ParseRange(option.Label)
		if err != nil || !experience.RangesOverlap(required, applicant) {
			continue
		}
		if applicant.Max == nil && containsMin(required, *applicant.Min) {
			return option, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return entity.QuestionOption{}, false
	}
	return options[first], true
}

func containsMin(r entity.ExperienceRange, years int) bool {
	return r.Min != nil && *r.Min <= years && (r.Max == nil || years <= *r.Max)
}

func clickOption(ctx context.Context, question output.ElementPort, option entity.QuestionOption) error {
	el, found, err := question.Query(ctx, option.Locator)
	if err != nil {
		return fmt.Errorf("query option %q: %w", option.Label, err)
	}
	if !found {
		return fmt.Errorf("option %q not found", option.Label)
	}
	return el.Click(ctx)
}

// FormatValue renders a form data value as input text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case []string:
		return strings.Join(val, ", ")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case *string:
		return val == nil || strings.TrimSpace(*val) == ""
	case entity.ExperienceRange:
		return val.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}
