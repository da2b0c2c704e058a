package models

import (
	"time"

	"gorm.io/datatypes"
)

type TestResult struct {
	ID                 uint    `json:"id" gorm:"primaryKey"`
	TestSessionID      uint    `json:"test_session_id" gorm:"not null;uniqueIndex"`
	UserID             *string `json:"user_id" gorm:"size:255;index"`
	CountCorrect       int     `json:"count_correct"`
	CountWrong         int     `json:"count_wrong"`
	CountAlmostCorrect int     `json:"count_almost_correct"`
	CountSkipped       int     `json:"count_skipped"`
	Score              float64 `json:"score"`

	// Per-question outcome snapshot, []QuestionOutcome
	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	TestSession *TestSession `json:"test_session,omitempty" gorm:"foreignKey:TestSessionID"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// Total returns the number of classified questions.
func (r *TestResult) Total() int {
	return r.CountCorrect + r.CountWrong + r.CountAlmostCorrect + r.CountSkipped
}

type QuestionOutcome struct {
	QuestionID uint         `json:"question_id"`
	AnswerID   *uint        `json:"answer_id,omitempty"`
	Score      float64      `json:"score"`
	MaxScore   float64      `json:"max_score"`
	Status     AnswerStatus `json:"status"`
}
