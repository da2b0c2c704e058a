package scoring

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Tally is the session-level fold of per-question outcomes.
type Tally struct {
	Correct       int
	Wrong         int
	AlmostCorrect int
	Skipped       int
	Total         float64
	Outcomes      []models.QuestionOutcome
}

// Aggregate scores every question of a test against the session's answers.
// A question without an answer is SKIPPED and has a nil AnswerID. Answers to
// questions that are no longer part of the test are ignored.
func Aggregate(questions []models.Question, answers []*models.Answer) Tally {
	byQuestion := make(map[uint]*models.Answer, len(answers))
	for _, a := range answers {
		if a != nil {
			byQuestion[a.QuestionID] = a
		}
	}

	tally := Tally{Outcomes: make([]models.QuestionOutcome, 0, len(questions))}
	for _, q := range questions {
		outcome := Skipped
		var answerID *uint

		if a, ok := byQuestion[q.ID]; ok {
			id := a.ID
			answerID = &id
			outcome = Score(q, SelectionFromAnswer(a))
		}

		switch outcome.Status {
		case models.AnswerCorrect:
			tally.Correct++
		case models.AnswerAlmostCorrect:
			tally.AlmostCorrect++
		case models.AnswerIncorrect:
			tally.Wrong++
		default:
			tally.Skipped++
		}
		tally.Total += outcome.Points

		tally.Outcomes = append(tally.Outcomes, models.QuestionOutcome{
			QuestionID: q.ID,
			AnswerID:   answerID,
			Score:      outcome.Points,
			MaxScore:   q.Score,
			Status:     outcome.Status,
		})
	}
	return tally
}

// Count returns the number of classified questions.
func (t Tally) Count() int {
	return t.Correct + t.Wrong + t.AlmostCorrect + t.Skipped
}
