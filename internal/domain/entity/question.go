package entity

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionLongText       QuestionType = "long_text"
	QuestionRadio          QuestionType = "radio"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionDate           QuestionType = "date"
	QuestionTime           QuestionType = "time"
)

// QuestionOption is a visible option label and the locator that selects it.
type QuestionOption struct {
	Label   string `json:"label"`
	Locator string `json:"locator"`
}

// FormQuestionSchema is a snapshot of one discovered question. It is produced per
// question per page and never persisted.
type FormQuestionSchema struct {
	Label        *string          `json:"label"`
	Type         QuestionType     `json:"type"`
	Required     bool             `json:"required"`
	Options      []QuestionOption `json:"options"`
	InputLocator *string          `json:"input_locator"`
}

func (q FormQuestionSchema) HasLabel() bool {
	return q.Label != nil && *q.Label != ""
}

func (q FormQuestionSchema) LabelText() string {
	if q.Label == nil {
		return ""
	}
	return *q.Label
}
