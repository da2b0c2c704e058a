package models

import (
	"strings"
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionFinished   SessionStatus = "FINISHED"
)

type AnswerStatus string

const (
	AnswerCorrect       AnswerStatus = "CORRECT"
	AnswerAlmostCorrect AnswerStatus = "ALMOST_CORRECT"
	AnswerIncorrect     AnswerStatus = "INCORRECT"
	AnswerSkipped       AnswerStatus = "SKIPPED"
)

type TestSession struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	UUID      string        `json:"uuid" gorm:"not null;uniqueIndex;size:36"`
	TestID    uint          `json:"test_id" gorm:"not null;index"`
	Status    SessionStatus `json:"status" gorm:"not null;default:IN_PROGRESS;index;size:20"`
	UserID    *string       `json:"user_id" gorm:"size:255;index"`
	GuestName *string       `json:"guest_name" gorm:"size:100"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Test       *Test       `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Answers    []Answer    `json:"answers" gorm:"foreignKey:TestSessionID;constraint:OnDelete:CASCADE"`
	TestResult *TestResult `json:"test_result,omitempty" gorm:"foreignKey:TestSessionID"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

func (s *TestSession) IsFinished() bool {
	return s.Status == SessionFinished
}

type Answer struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	TestSessionID uint          `json:"test_session_id" gorm:"not null;uniqueIndex:idx_answer_session_question"`
	QuestionID    uint          `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_session_question"`
	Text          *string       `json:"text" gorm:"type:text"`
	Score         float64       `json:"score" gorm:"default:0"`
	Status        *AnswerStatus `json:"status" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SelectedOptions []Option `json:"selected_options" gorm:"many2many:answer_selected_options;constraint:OnDelete:CASCADE"`
}

func (Answer) TableName() string {
	return "answers"
}

// IsEmpty reports whether nothing was submitted for the answer.
func (a *Answer) IsEmpty() bool {
	return len(a.SelectedOptions) == 0 && (a.Text == nil || strings.TrimSpace(*a.Text) == "")
}
