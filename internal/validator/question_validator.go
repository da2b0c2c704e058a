package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

const (
	minChoiceOptions = 2
	maxOptions       = 20
)

// QuestionValidator holds the authoring rules a question must satisfy before it can be scored
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question with its options.
// Returns nil or a non-empty ValidationErrors.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	var errs ValidationErrors

	if strings.TrimSpace(question.Text) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule("text", "is required", "required", question.Text))
	}
	if question.Score <= 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("score", "must be greater than 0", "gt", question.Score))
	}
	if len(question.Options) > maxOptions {
		errs = append(errs, *errors.NewValidationErrorWithRule("options",
			fmt.Sprintf("cannot have more than %d options", maxOptions), "max", len(question.Options)))
	}

	switch question.Type {
	case models.QuestionSingle, models.QuestionMultiple:
		errs = append(errs, v.validateChoiceOptions(question)...)
	case models.QuestionText:
		errs = append(errs, v.validateTextOptions(question)...)
	default:
		errs = append(errs, *errors.NewValidationErrorWithRule("type",
			"must be a valid question type (SINGLE, MULTIPLE, TEXT)", "question_type", question.Type))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *QuestionValidator) validateChoiceOptions(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	if len(question.Options) < minChoiceOptions {
		errs = append(errs, *errors.NewValidationErrorWithRule("options",
			fmt.Sprintf("must have at least %d options", minChoiceOptions), "min", len(question.Options)))
	}

	correct := 0
	for i, option := range question.Options {
		if strings.TrimSpace(option.Text) == "" {
			errs = append(errs, *errors.NewValidationErrorWithRule(
				fmt.Sprintf("options[%d].text", i), "is required", "required", option.Text))
		}
		if option.IsCorrect {
			correct++
		}
	}

	switch {
	case correct == 0:
		errs = append(errs, *errors.NewValidationErrorWithRule("options",
			"must have at least 1 correct option", "min_correct", correct))
	case question.Type == models.QuestionSingle && correct > 1:
		errs = append(errs, *errors.NewValidationErrorWithRule("options",
			"single choice question must have exactly 1 correct option", "single_correct", correct))
	}

	return errs
}

// validateTextOptions requires at least one accepted answer. Every option of a
// TEXT question is an accepted answer, so they are all flagged correct.
func (v *QuestionValidator) validateTextOptions(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	accepted := 0
	for i, option := range question.Options {
		if strings.TrimSpace(option.Text) == "" {
			errs = append(errs, *errors.NewValidationErrorWithRule(
				fmt.Sprintf("options[%d].text", i), "accepted answer cannot be blank", "required", option.Text))
			continue
		}
		accepted++
	}

	if accepted == 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("options",
			"must have at least 1 accepted answer", "min", len(question.Options)))
	}

	return errs
}

// NormalizeTextOptions trims accepted answers and marks them correct.
func (v *QuestionValidator) NormalizeTextOptions(question *models.Question) {
	if question.Type != models.QuestionText {
		return
	}
	for i := range question.Options {
		question.Options[i].Text = strings.TrimSpace(question.Options[i].Text)
		question.Options[i].IsCorrect = true
	}
}
