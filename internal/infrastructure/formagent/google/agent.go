// Package google drives Google Forms: it finds the form, reads every question into a
// schema, hands each one to a QuestionAnswerer and submits.
package google

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/entity"
	"form-applier/internal/infrastructure/browser/pagetext"
	"form-applier/internal/infrastructure/evidence"
)

const (
	ConfirmationText = "Your response has been recorded"

	formSelector      = "form"
	listSelector      = "div[role='list']"
	questionSelector  = ":scope > div[role='listitem']"
	buttonSelector    = "div[role='button']"
	submitButtonLabel = "submit"
)

var formURLRe = regexp.MustCompile(
	`(?i)^(https?://)?(docs|forms)\.google\.com/(forms|spreadsheets)/d/([/a-zA-Z0-9_-]+)(/viewform|/edit)?(\?.*)?$`,
)

// ErrNoValue marks a question the applicant data has no answer for. Optional questions
// failing with it are skipped.
var ErrNoValue = errors.New("no value in form data")

// QuestionAnswerer fills a single question. Implementations hold the answering policy
// for one kind of form.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question output.ElementPort, schema entity.FormQuestionSchema, data entity.FormData) error
}

var (
	_ output.FormAgent        = (*FormAgent)(nil)
	_ output.EvidenceCapturer = (*FormAgent)(nil)
)

type FormAgent struct {
	name        string
	description string
	answerer    QuestionAnswerer
	logger      output.LoggerPort
}

func NewFormAgent(name, description string, answerer QuestionAnswerer, logger output.LoggerPort) *FormAgent {
	return &FormAgent{
		name:        name,
		description: description,
		answerer:    answerer,
		logger:      logger.WithField("agent", name),
	}
}

func (a *FormAgent) Name() string        { return a.name }
func (a *FormAgent) Description() string { return a.description }

func (a *FormAgent) SupportsURL(url string) bool {
	return formURLRe.MatchString(strings.TrimSpace(url))
}

func (a *FormAgent) LocateForm(ctx context.Context, page output.PagePort) (output.ElementPort, error) {
	form, found, err := page.Query(ctx, formSelector)
	if err != nil {
		return nil, a.wrap(err, "query form")
	}
	if !found {
		return nil, apperr.NewAgentError(a.name, "no form found on the page")
	}
	return form, nil
}

// FillForm answers every question of form in document order. An optional question
// without a matching value is skipped; any other failure stops filling.
func (a *FormAgent) FillForm(ctx context.Context, form output.ElementPort, data entity.FormData) error {
	questions, err := a.questions(ctx, form)
	if err != nil {
		return err
	}

	for i, question := range questions {
		schema, err := ReadSchema(ctx, question)
		if err != nil {
			return a.wrap(err, fmt.Sprintf("read question %d", i+1))
		}

		err = a.answerer.Answer(ctx, question, schema, data)
		switch {
		case err == nil:
			a.logger.Debug("Question answered", "label", schema.LabelText(), "type", string(schema.Type))
		case errors.Is(err, ErrNoValue) && !schema.Required:
			a.logger.Debug("Skipping optional question", "label", schema.LabelText())
		default:
			return a.wrap(err, fmt.Sprintf("answer question %q", schema.LabelText()))
		}
	}
	return nil
}

func (a *FormAgent) questions(ctx context.Context, form output.ElementPort) ([]output.ElementPort, error) {
	list, found, err := form.Query(ctx, listSelector)
	if err != nil {
		return nil, a.wrap(err, "query question list")
	}
	if !found {
		return nil, apperr.NewAgentError(a.name, "no questions found in the form")
	}

	questions, err := list.QueryAll(ctx, questionSelector)
	if err != nil {
		return nil, a.wrap(err, "query questions")
	}
	if len(questions) == 0 {
		return nil, apperr.NewAgentError(a.name, "no questions found in the form")
	}
	return questions, nil
}

// ReadSchema evaluates the schema script against question.
func ReadSchema(ctx context.Context, question output.ElementPort) (entity.FormQuestionSchema, error) {
	var schema entity.FormQuestionSchema
	if err := question.Eval(ctx, schemaJS, &schema); err != nil {
		return entity.FormQuestionSchema{}, fmt.Errorf("evaluate question schema: %w", err)
	}
	if schema.Type == "" {
		schema.Type = entity.QuestionText
	}
	return schema, nil
}

// SubmitForm clicks the button labelled "Submit", or the first button of the form when
// no button carries that label.
func (a *FormAgent) SubmitForm(ctx context.Context, form output.ElementPort) error {
	buttons, err := form.QueryAll(ctx, buttonSelector)
	if err != nil {
		return a.wrap(err, "query submit button")
	}
	if len(buttons) == 0 {
		return apperr.NewAgentError(a.name, "no submit button found in the form")
	}

	target := buttons[0]
	for _, b := range buttons {
		text, err := b.Text(ctx)
		if err == nil && strings.EqualFold(strings.TrimSpace(text), submitButtonLabel) {
			target = b
			break
		}
	}

	if err := target.Click(ctx); err != nil {
		return a.wrap(err, "click submit button")
	}
	return nil
}

func (a *FormAgent) ConfirmSubmission(ctx context.Context, page output.PagePort) (bool, error) {
	if err := page.WaitStable(ctx); err != nil {
		a.logger.Warn("Page did not settle after submit", "error", err)
	}
	doc, err := page.HTML(ctx)
	if err != nil {
		return false, a.wrap(err, "read confirmation page")
	}
	return pagetext.Contains(doc, ConfirmationText), nil
}

func (a *FormAgent) CaptureEvidence(
	ctx context.Context,
	page output.PagePort,
	path string,
	settings entity.EvidenceSettings,
) error {
	if err := evidence.Validate(path); err != nil {
		return a.wrap(err, "invalid screenshot path")
	}

	a.logger.Info("Taking screenshot", "url", page.URL())
	raw, err := page.Screenshot(ctx, settings.Format, settings.Quality)
	if err != nil {
		return a.wrap(err, "take screenshot")
	}
	if err := evidence.Write(path, raw, evidence.WriteOptions{Quality: settings.Quality, MaxWidth: settings.MaxWidth}); err != nil {
		return a.wrap(err, "save screenshot")
	}
	a.logger.Debug("Screenshot saved", "path", path)
	return nil
}

func (a *FormAgent) wrap(err error, msg string) error {
	var agentErr *apperr.AgentError
	if errors.As(err, &agentErr) && agentErr.Agent == a.name {
		return err
	}
	return &apperr.AgentError{Agent: a.name, Message: msg, Cause: err}
}
