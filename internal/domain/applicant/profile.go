// Package applicant turns raw applicant records into validated profiles.
package applicant

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/entity"
	"form-applier/internal/domain/experience"

	"github.com/go-playground/validator/v10"
)

var (
	fullNameKeys   = []string{"fullName", "name", "full_name"}
	firstNameKeys  = []string{"firstName", "givenName", "first_name"}
	lastNameKeys   = []string{"lastName", "familyName", "last_name"}
	emailKeys      = []string{"email", "contact_email", "email_address"}
	countryKeys    = []string{"country", "location", "residence"}
	experienceKeys = []string{"experience", "years_of_experience"}
	interestsKeys  = []string{"interests"}
	commentsKeys   = []string{"comments"}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateExperience, entity.ApplicantProfile{})
	return v
}

func validateExperience(sl validator.StructLevel) {
	var r entity.ExperienceRange
	switch p := sl.Current().Interface().(type) {
	case entity.ApplicantProfile:
		r = p.Experience
	case *entity.ApplicantProfile:
		r = p.Experience
	default:
		return
	}
	for _, bound := range []*int{r.Min, r.Max} {
		if bound != nil && (*bound < experience.MinYears || *bound > experience.MaxYears) {
			sl.ReportError(r, "years_of_experience", "Experience", "yearsbounds", "")
			return
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		sl.ReportError(r, "years_of_experience", "Experience", "minmax", "")
	}
}

// NewProfile builds an ApplicantProfile from a flat record. Experience given as text is
// parsed before validation; unknown keys are preserved in Extra.
func NewProfile(raw map[string]any) (*entity.ApplicantProfile, error) {
	consumed := map[string]bool{}
	var fieldErrs []apperr.FieldError

	take := func(keys []string) (any, bool) {
		for _, k := range keys {
			if v, ok := raw[k]; ok {
				for _, alias := range keys {
					consumed[alias] = true
				}
				return v, true
			}
		}
		return nil, false
	}
	str := func(field string, keys []string) string {
		v, ok := take(keys)
		if !ok || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: field, Message: fmt.Sprintf("expected a string, got %T", v)})
			return ""
		}
		return strings.TrimSpace(s)
	}

	p := &entity.ApplicantProfile{
		FullName: str("full_name", fullNameKeys),
		Email:    str("email", emailKeys),
		Country:  strings.ToUpper(str("country", countryKeys)),
	}
	givenFirst := str("first_name", firstNameKeys)
	givenLast := str("last_name", lastNameKeys)
	p.FirstName, p.LastName = splitName(p.FullName, givenFirst, givenLast)

	var rangeErr error
	if v, ok := take(experienceKeys); ok {
		r, err := toRange(v)
		if err != nil {
			if errors.Is(err, apperr.ErrInvalidRange) {
				rangeErr = err
			}
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "years_of_experience", Message: err.Error()})
		}
		p.Experience = r
	} else {
		p.Experience = entity.Years(0, 1)
	}

	if v, ok := take(interestsKeys); ok && v != nil {
		interests, err := toStrings(v)
		if err != nil {
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "interests", Message: err.Error()})
		}
		p.Interests = interests
	}
	if v, ok := take(commentsKeys); ok && v != nil {
		s, isStr := v.(string)
		if !isStr {
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "comments", Message: fmt.Sprintf("expected a string, got %T", v)})
		} else {
			p.Comments = &s
		}
	}

	for k, v := range raw {
		if consumed[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, &apperr.ValidationError{Record: -1, Cause: err}
		}
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: jsonName(fe.StructField()), Message: describe(fe)})
		}
	}
	if len(fieldErrs) > 0 {
		return nil, &apperr.ValidationError{Record: -1, Fields: fieldErrs, Cause: rangeErr}
	}
	return p, nil
}

// splitName derives first/last names from the full name on the first whitespace run.
// Explicit first/last values are kept only when the full name has no space to split.
func splitName(full, first, last string) (string, string) {
	if parts := strings.Fields(full); len(parts) > 1 {
		idx := strings.IndexFunc(full, unicode.IsSpace)
		return full[:idx], strings.TrimSpace(full[idx:])
	}
	if first != "" || last != "" {
		return first, last
	}
	return full, ""
}

func toRange(v any) (entity.ExperienceRange, error) {
	switch val := v.(type) {
	case nil:
		return entity.ExperienceRange{}, nil
	case string:
		return experience.ParseRange(val)
	case entity.ExperienceRange:
		return val, nil
	case []any:
		if len(val) != 2 {
			return entity.ExperienceRange{}, fmt.Errorf("expected [min, max], got %d elements", len(val))
		}
		min, err := toBound(val[0])
		if err != nil {
			return entity.ExperienceRange{}, err
		}
		max, err := toBound(val[1])
		if err != nil {
			return entity.ExperienceRange{}, err
		}
		return entity.NewExperienceRange(min, max), nil
	case map[string]any:
		min, err := toBound(val["min"])
		if err != nil {
			return entity.ExperienceRange{}, err
		}
		max, err := toBound(val["max"])
		if err != nil {
			return entity.ExperienceRange{}, err
		}
		return entity.NewExperienceRange(min, max), nil
	default:
		if n, err := toBound(v); err == nil && n != nil {
			return entity.NewExperienceRange(n, n), nil
		}
		return entity.ExperienceRange{}, fmt.Errorf("unsupported experience value of type %T", v)
	}
}

func toBound(v any) (*int, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &n, nil
	case int64:
		i := int(n)
		return &i, nil
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", n.String())
		}
		f = parsed
	default:
		return nil, fmt.Errorf("expected an integer bound, got %T", v)
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("expected an integer bound, got %v", f)
	}
	i := int(f)
	return &i, nil
}

func toStrings(v any) ([]string, error) {
	switch val := v.(type) {
	case []string:
		return val, nil
	case string:
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, found %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}

func jsonName(field string) string {
	switch field {
	case "FullName":
		return "full_name"
	case "Email":
		return "email"
	case "Country":
		return "country"
	case "Experience":
		return "years_of_experience"
	default:
		return strings.ToLower(field)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "yearsbounds":
		return fmt.Sprintf("bounds must be between %d and %d", experience.MinYears, experience.MaxYears)
	case "minmax":
		return "minimum must not exceed maximum"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
