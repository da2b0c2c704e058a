package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

type publishInput struct {
	Code      string     `json:"code" validate:"required,test_code"`
	Type      string     `json:"type" validate:"required,question_type"`
	ExpiresAt *time.Time `json:"expires_at" validate:"omitempty,future_date"`
}

func TestValidate_CustomTags(t *testing.T) {
	v := New()
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name       string
		input      publishInput
		wantFields []string
	}{
		{
			name:  "valid",
			input: publishInput{Code: "AB12CD34", Type: "MULTIPLE", ExpiresAt: &future},
		},
		{
			name:  "nil expiry allowed",
			input: publishInput{Code: "ZZZZ9999", Type: "TEXT"},
		},
		{
			name:       "lowercase code",
			input:      publishInput{Code: "ab12cd34", Type: "SINGLE"},
			wantFields: []string{"code"},
		},
		{
			name:       "unknown type and past expiry",
			input:      publishInput{Code: "AB12CD34", Type: "ESSAY", ExpiresAt: &past},
			wantFields: []string{"type", "expires_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	qv := NewQuestionValidator()

	tests := []struct {
		name     string
		question models.Question
		wantErr  bool
		wantRule string
	}{
		{
			name: "valid single",
			question: models.Question{Text: "2+2", Type: models.QuestionSingle, Score: 1, Options: []models.Option{
				{Text: "4", IsCorrect: true}, {Text: "3"},
			}},
		},
		{
			name: "single with two correct",
			question: models.Question{Text: "2+2", Type: models.QuestionSingle, Score: 1, Options: []models.Option{
				{Text: "4", IsCorrect: true}, {Text: "four", IsCorrect: true},
			}},
			wantErr:  true,
			wantRule: "single_correct",
		},
		{
			name: "multiple with one option",
			question: models.Question{Text: "primes", Type: models.QuestionMultiple, Score: 2, Options: []models.Option{
				{Text: "2", IsCorrect: true},
			}},
			wantErr:  true,
			wantRule: "min",
		},
		{
			name: "multiple without correct",
			question: models.Question{Text: "primes", Type: models.QuestionMultiple, Score: 2, Options: []models.Option{
				{Text: "4"}, {Text: "6"},
			}},
			wantErr:  true,
			wantRule: "min_correct",
		},
		{
			name:     "text without accepted answer",
			question: models.Question{Text: "capital", Type: models.QuestionText, Score: 3},
			wantErr:  true,
			wantRule: "min",
		},
		{
			name: "zero score",
			question: models.Question{Text: "capital", Type: models.QuestionText, Score: 0, Options: []models.Option{
				{Text: "Paris"},
			}},
			wantErr:  true,
			wantRule: "gt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := qv.ValidateQuestion(&tt.question)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			rules := make([]string, 0, len(errs))
			for _, e := range errs {
				rules = append(rules, e.Rule)
			}
			assert.Contains(t, rules, tt.wantRule)
		})
	}
}

func TestQuestionValidator_NormalizeTextOptions(t *testing.T) {
	q := models.Question{Type: models.QuestionText, Options: []models.Option{{Text: "  Paris "}}}

	NewQuestionValidator().NormalizeTextOptions(&q)

	assert.Equal(t, "Paris", q.Options[0].Text)
	assert.True(t, q.Options[0].IsCorrect)
}
