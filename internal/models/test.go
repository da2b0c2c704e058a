package models

import (
	"time"
)

type TestStatus string

const (
	TestStatusDraft     TestStatus = "DRAFT"
	TestStatusPublished TestStatus = "PUBLISHED"
)

type Test struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	AuthorID    string     `json:"author_id" gorm:"not null;size:255;index"`
	Status      TestStatus `json:"status" gorm:"default:DRAFT;index"`

	// Publication
	Code               *string    `json:"code" gorm:"uniqueIndex;size:16"`
	ExpiresAt          *time.Time `json:"expires_at"`
	ShowCorrectAnswers bool       `json:"show_correct_answers" gorm:"default:false"`
	ShowQuestionScore  bool       `json:"show_question_score" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions    []Question    `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
	TestSessions []TestSession `json:"test_sessions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
}

func (Test) TableName() string {
	return "tests"
}

// IsExpired reports whether the test stopped accepting respondents at now.
func (t *Test) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// MaxScore sums the score of every question.
func (t *Test) MaxScore() float64 {
	var total float64
	for _, q := range t.Questions {
		total += q.Score
	}
	return total
}
