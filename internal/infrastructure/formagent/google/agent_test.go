package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/entity"
	"form-applier/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	text     string
	schema   *entity.FormQuestionSchema
	children map[string][]*fakeElement
	clicks   int
	filled   []string
}

func (e *fakeElement) Query(_ context.Context, selector string) (output.ElementPort, bool, error) {
	if els := e.children[selector]; len(els) > 0 {
		return els[0], true, nil
	}
	return nil, false, nil
}

func (e *fakeElement) QueryAll(_ context.Context, selector string) ([]output.ElementPort, error) {
	out := make([]output.ElementPort, 0, len(e.children[selector]))
	for _, el := range e.children[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (e *fakeElement) Eval(_ context.Context, _ string, out any) error {
	if e.schema == nil {
		return errors.New("evaluation failed")
	}
	raw, err := json.Marshal(e.schema)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (e *fakeElement) Click(context.Context) error { e.clicks++; return nil }

func (e *fakeElement) Fill(_ context.Context, text string) error {
	e.filled = append(e.filled, text)
	return nil
}

func (e *fakeElement) Text(context.Context) (string, error) { return e.text, nil }

type fakePage struct {
	form       *fakeElement
	html       string
	screenshot []byte
}

func (p *fakePage) Navigate(context.Context, string) (*entity.NavigationResult, error) {
	return &entity.NavigationResult{Status: 200}, nil
}

func (p *fakePage) Query(_ context.Context, selector string) (output.ElementPort, bool, error) {
	if selector == formSelector && p.form != nil {
		return p.form, true, nil
	}
	return nil, false, nil
}

func (p *fakePage) HTML(context.Context) (string, error) { return p.html, nil }
func (p *fakePage) WaitStable(context.Context) error     { return nil }
func (p *fakePage) URL() string                          { return "https://docs.google.com/forms/d/x/formResponse" }
func (p *fakePage) Close() error                         { return nil }
func (p *fakePage) Screenshot(context.Context, entity.ImageFormat, int) ([]byte, error) {
	return p.screenshot, nil
}

func ptr(s string) *string { return &s }

// textQuestion builds a question with one stamped input.
func textQuestion(label string, required bool) (*fakeElement, *fakeElement) {
	input := &fakeElement{}
	locator := "input[data-applier-input=\"" + label + "\"]"
	q := &fakeElement{
		schema: &entity.FormQuestionSchema{
			Label:        ptr(label),
			Type:         entity.QuestionText,
			Required:     required,
			InputLocator: ptr(locator),
		},
		children: map[string][]*fakeElement{locator: {input}},
	}
	return q, input
}

// choiceQuestion builds a question whose options are returned in order.
func choiceQuestion(label *string, typ entity.QuestionType, labels ...string) (*fakeElement, []*fakeElement) {
	q := &fakeElement{
		schema:   &entity.FormQuestionSchema{Label: label, Type: typ, Required: true},
		children: map[string][]*fakeElement{},
	}
	options := make([]*fakeElement, 0, len(labels))
	for i, l := range labels {
		locator := "label[data-applier-radio=\"" + string(rune('a'+i)) + "\"]"
		opt := &fakeElement{text: l}
		q.schema.Options = append(q.schema.Options, entity.QuestionOption{Label: l, Locator: locator})
		q.children[locator] = []*fakeElement{opt}
		options = append(options, opt)
	}
	return q, options
}

func formWith(questions ...*fakeElement) *fakeElement {
	list := &fakeElement{children: map[string][]*fakeElement{questionSelector: questions}}
	return &fakeElement{children: map[string][]*fakeElement{listSelector: {list}}}
}

func applicantData() entity.FormData {
	comments := "Happy to relocate"
	p := &entity.ApplicantProfile{
		FullName:   "Ada Lovelace",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Country:    "GB",
		Experience: entity.Years(3, 5),
		Comments:   &comments,
	}
	return p.FormData()
}

func newAgent(policy NoOverlapPolicy) *FormAgent {
	return NewJobFormAgent(policy, logger.NewNop())
}

func TestSupportsURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://docs.google.com/forms/d/e/1FAIpQLSf/viewform", true},
		{"https://docs.google.com/forms/d/abc_123-XYZ/edit", true},
		{"http://forms.google.com/forms/d/abc", true},
		{"docs.google.com/forms/d/abc/viewform?usp=sf_link", true},
		{"HTTPS://DOCS.GOOGLE.COM/FORMS/D/ABC/VIEWFORM", true},
		{"https://docs.google.com/spreadsheets/d/abc/edit", true},
		{"https://docs.google.com/document/d/abc/edit", false},
		{"https://example.com/forms/d/abc", false},
		{"https://forms.gle/abc", false},
		{"", false},
	}

	agent := newAgent(FallbackFirstOption)
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, agent.SupportsURL(tt.url))
		})
	}
}

func TestLocateForm(t *testing.T) {
	agent := newAgent(FallbackFirstOption)

	form := &fakeElement{}
	got, err := agent.LocateForm(context.Background(), &fakePage{form: form})
	require.NoError(t, err)
	assert.Same(t, form, got)

	_, err = agent.LocateForm(context.Background(), &fakePage{})
	var agentErr *apperr.AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, JobFormAgentName, agentErr.Agent)
}

func TestFillForm_JobApplication(t *testing.T) {
	first, firstInput := textQuestion("First name", true)
	email, emailInput := textQuestion("Email", true)
	shoe, shoeInput := textQuestion("Shoe size", false)
	yoe, yoeOptions := choiceQuestion(ptr("Years of experience"), entity.QuestionRadio, "0-1", "2-4", "5+")
	country, countryOptions := choiceQuestion(ptr("Country"), entity.QuestionMultipleChoice, "United States", "GB", "Canada")
	terms, termsOptions := choiceQuestion(nil, entity.QuestionRadio, "I agree to the terms")

	form := formWith(first, email, shoe, yoe, country, terms)

	err := newAgent(FallbackFirstOption).FillForm(context.Background(), form, applicantData())
	require.NoError(t, err)

	assert.Equal(t, []string{"Ada"}, firstInput.filled)
	assert.Equal(t, []string{"ada@example.com"}, emailInput.filled)
	assert.Empty(t, shoeInput.filled, "optional question without data is skipped")
	assert.Equal(t, []int{0, 1, 0}, clicks(yoeOptions))
	assert.Equal(t, []int{0, 1, 0}, clicks(countryOptions))
	assert.Equal(t, []int{1}, clicks(termsOptions))
}

func TestFillForm_RequiredQuestionWithoutValue(t *testing.T) {
	shoe, _ := textQuestion("Shoe size", true)

	err := newAgent(FallbackFirstOption).FillForm(context.Background(), formWith(shoe), applicantData())

	var agentErr *apperr.AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.ErrorIs(t, err, ErrNoValue)
	assert.Contains(t, err.Error(), "Shoe size")
}

func TestFillForm_NoOverlappingBracket(t *testing.T) {
	t.Run("Fallback selects first option", func(t *testing.T) {
		yoe, options := choiceQuestion(ptr("Years of experience"), entity.QuestionRadio, "7-9", "10+")

		err := newAgent(FallbackFirstOption).FillForm(context.Background(), formWith(yoe), applicantData())
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0}, clicks(options))
	})

	t.Run("Strict fails", func(t *testing.T) {
		yoe, options := choiceQuestion(ptr("Years of experience"), entity.QuestionRadio, "7-9", "10+")

		err := newAgent(FailOnNoOverlap).FillForm(context.Background(), formWith(yoe), applicantData())

		var agentErr *apperr.AgentError
		require.ErrorAs(t, err, &agentErr)
		assert.Equal(t, StrictJobFormAgentName, agentErr.Agent)
		assert.ErrorIs(t, err, ErrNoMatchingOption)
		assert.Equal(t, []int{0, 0}, clicks(options))
	})
}

func TestFillForm_Errors(t *testing.T) {
	unsupported, _ := choiceQuestion(ptr("Country"), entity.QuestionCheckbox, "GB", "US")
	unlabeled, _ := choiceQuestion(nil, entity.QuestionRadio, "Yes", "No")
	noInput := &fakeElement{schema: &entity.FormQuestionSchema{Label: ptr("Email"), Type: entity.QuestionText, Required: true}}
	broken := &fakeElement{}

	tests := []struct {
		name    string
		form    *fakeElement
		wantErr string
	}{
		{"Unsupported type", formWith(unsupported), "unsupported question type"},
		{"Unlabeled multi-option", formWith(unlabeled), "no label"},
		{"Missing input", formWith(noInput), "no input found"},
		{"Schema evaluation", formWith(broken), "read question 1"},
		{"No question list", &fakeElement{}, "no questions found"},
		{"Empty question list", formWith(), "no questions found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAgent(FallbackFirstOption).FillForm(context.Background(), tt.form, applicantData())

			var agentErr *apperr.AgentError
			require.ErrorAs(t, err, &agentErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSubmitForm(t *testing.T) {
	next := &fakeElement{text: "Clear form"}
	submit := &fakeElement{text: " Submit "}
	form := &fakeElement{children: map[string][]*fakeElement{buttonSelector: {next, submit}}}

	require.NoError(t, newAgent(FallbackFirstOption).SubmitForm(context.Background(), form))
	assert.Equal(t, 0, next.clicks)
	assert.Equal(t, 1, submit.clicks)

	only := &fakeElement{text: "Send"}
	form = &fakeElement{children: map[string][]*fakeElement{buttonSelector: {only}}}
	require.NoError(t, newAgent(FallbackFirstOption).SubmitForm(context.Background(), form))
	assert.Equal(t, 1, only.clicks)

	err := newAgent(FallbackFirstOption).SubmitForm(context.Background(), &fakeElement{})
	var agentErr *apperr.AgentError
	assert.ErrorAs(t, err, &agentErr)
}

func TestConfirmSubmission(t *testing.T) {
	agent := newAgent(FallbackFirstOption)

	ok, err := agent.ConfirmSubmission(context.Background(), &fakePage{
		html: `<body><div>Job application</div><div>Your response has been recorded.</div></body>`,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = agent.ConfirmSubmission(context.Background(), &fakePage{
		html: `<body><script>"Your response has been recorded"</script><div>Please fix errors</div></body>`,
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCaptureEvidence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	page := &fakePage{screenshot: buf.Bytes()}
	agent := newAgent(FallbackFirstOption)

	path := filepath.Join(t.TempDir(), "ada.png")
	require.NoError(t, agent.CaptureEvidence(context.Background(), page, path, entity.EvidenceSettings{Format: entity.ImagePNG}))
	_, err := os.Stat(path)
	assert.NoError(t, err)

	err = agent.CaptureEvidence(context.Background(), page, filepath.Join(t.TempDir(), "missing", "ada.png"), entity.EvidenceSettings{Format: entity.ImagePNG})
	var agentErr *apperr.AgentError
	assert.ErrorAs(t, err, &agentErr)
}

func TestCaptureEvidence_MaxWidth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 10))))
	page := &fakePage{screenshot: buf.Bytes()}
	agent := newAgent(FallbackFirstOption)

	path := filepath.Join(t.TempDir(), "ada.png")
	settings := entity.EvidenceSettings{Format: entity.ImagePNG, MaxWidth: 20}
	require.NoError(t, agent.CaptureEvidence(context.Background(), page, path, settings))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "x", FormatValue("x"))
	assert.Equal(t, "a, b", FormatValue([]string{"a", "b"}))
	assert.Equal(t, "3-5", FormatValue(entity.Years(3, 5)))
	assert.Equal(t, "42", FormatValue(42))
}

func clicks(els []*fakeElement) []int {
	out := make([]int, len(els))
	for i, el := range els {
		out[i] = el.clicks
	}
	return out
}

func TestPickBucket(t *testing.T) {
	options := []entity.QuestionOption{
		{Label: "0-1", Locator: "a"},
		{Label: "2-4", Locator: "b"},
		{Label: "5-9", Locator: "c"},
		{Label: "10+", Locator: "d"},
	}

	tests := []struct {
		name      string
		applicant entity.ExperienceRange
		want      string
		found     bool
	}{
		{"Closed range takes first overlap", entity.Years(3, 6), "2-4", true},
		{"Open applicant takes containing bucket", entity.AtLeast(8), "5-9", true},
		{"Open applicant above every closed bucket", entity.AtLeast(12), "10+", true},
		{"Open applicant at bucket edge", entity.AtLeast(2), "2-4", true},
		{"Unknown applicant", entity.ExperienceRange{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBucket(options, tt.applicant)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got.Label)
		})
	}

	got, ok := pickBucket(options[:2], entity.AtLeast(8))
	assert.True(t, ok, "qualifies for lower buckets when none contains the minimum")
	assert.Equal(t, "0-1", got.Label)
}
