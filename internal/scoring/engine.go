// Package scoring computes the points and classification of a single answer.
// It is pure: no storage, no clock, no logging.
package scoring

import (
	"math"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// epsilon absorbs float drift when partial credits add back up to the full score.
const epsilon = 1e-9

// Selection is what a respondent submitted for one question.
type Selection struct {
	Options []models.Option
	Text    string
}

// SelectionFromAnswer builds a Selection from a persisted answer. A nil answer is an empty selection.
func SelectionFromAnswer(a *models.Answer) Selection {
	if a == nil {
		return Selection{}
	}
	sel := Selection{Options: a.SelectedOptions}
	if a.Text != nil {
		sel.Text = *a.Text
	}
	return sel
}

// IsEmpty reports whether nothing was selected or typed.
func (s Selection) IsEmpty() bool {
	return len(s.Options) == 0 && strings.TrimSpace(s.Text) == ""
}

type Outcome struct {
	Points float64
	Status models.AnswerStatus
}

// Skipped is the outcome of an empty or absent answer.
var Skipped = Outcome{Points: 0, Status: models.AnswerSkipped}

type strategy func(q models.Question, sel Selection) Outcome

var strategies = map[models.QuestionType]strategy{
	models.QuestionSingle:   scoreSingle,
	models.QuestionMultiple: scoreMultiple,
	models.QuestionText:     scoreText,
}

// Score grades sel against q. Unknown question types score 0 and INCORRECT.
func Score(q models.Question, sel Selection) Outcome {
	if sel.IsEmpty() {
		return Skipped
	}
	fn, ok := strategies[q.Type]
	if !ok {
		return Outcome{Points: 0, Status: models.AnswerIncorrect}
	}
	return fn(q, sel)
}

func scoreSingle(q models.Question, sel Selection) Outcome {
	if len(sel.Options) == 0 {
		return Outcome{Points: 0, Status: models.AnswerIncorrect}
	}
	if isCorrect(q, sel.Options[0].ID) {
		return Outcome{Points: q.Score, Status: models.AnswerCorrect}
	}
	return Outcome{Points: 0, Status: models.AnswerIncorrect}
}

// scoreMultiple adds score/k per correct selection and subtracts score/k per
// incorrect one. The running total is floored at zero after every step.
func scoreMultiple(q models.Question, sel Selection) Outcome {
	k := len(q.CorrectOptions())
	if k == 0 {
		return Outcome{Points: 0, Status: models.AnswerIncorrect}
	}
	step := q.Score / float64(k)

	seen := make(map[uint]struct{}, len(sel.Options))
	var points float64
	for _, o := range sel.Options {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}

		if isCorrect(q, o.ID) {
			points += step
		} else {
			points -= step
		}
		if points < 0 {
			points = 0
		}
	}

	if math.Abs(points-q.Score) < epsilon {
		points = q.Score
	}
	if points > q.Score {
		points = q.Score
	}

	switch {
	case points == q.Score:
		return Outcome{Points: points, Status: models.AnswerCorrect}
	case points > 0:
		return Outcome{Points: points, Status: models.AnswerAlmostCorrect}
	default:
		return Outcome{Points: 0, Status: models.AnswerIncorrect}
	}
}

// scoreText matches the trimmed submission against every option text, case-sensitive.
func scoreText(q models.Question, sel Selection) Outcome {
	submitted := strings.TrimSpace(sel.Text)
	if submitted == "" && len(sel.Options) > 0 {
		submitted = strings.TrimSpace(sel.Options[0].Text)
	}
	for _, o := range q.Options {
		if o.Text == submitted {
			return Outcome{Points: q.Score, Status: models.AnswerCorrect}
		}
	}
	return Outcome{Points: 0, Status: models.AnswerIncorrect}
}

// isCorrect reads correctness from the question definition. Flags carried by
// the submitted option are ignored.
func isCorrect(q models.Question, optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o.IsCorrect
		}
	}
	return false
}
