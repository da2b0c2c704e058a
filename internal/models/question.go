package models

import "time"

type QuestionType string

const (
	QuestionSingle   QuestionType = "SINGLE"
	QuestionMultiple QuestionType = "MULTIPLE"
	QuestionText     QuestionType = "TEXT"
)

// IsValid checks whether the question type is one of the supported types
func (qt QuestionType) IsValid() bool {
	switch qt {
	case QuestionSingle, QuestionMultiple, QuestionText:
		return true
	}
	return false
}

type Question struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	TestID      uint         `json:"test_id" gorm:"not null;index"`
	Text        string       `json:"text" gorm:"not null;type:text"`
	Description *string      `json:"description" gorm:"type:text"`
	Type        QuestionType `json:"type" gorm:"not null;size:20"`
	Score       float64      `json:"score" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Options []Option `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// Option is a candidate choice. For TEXT questions Text holds an accepted answer.
type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;type:text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

func (Option) TableName() string {
	return "options"
}

// CorrectOptions returns the options flagged correct.
func (q *Question) CorrectOptions() []Option {
	correct := make([]Option, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			correct = append(correct, o)
		}
	}
	return correct
}

// HasOption reports whether optionID belongs to the question.
func (q *Question) HasOption(optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
