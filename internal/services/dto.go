package services

import (
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// ===== REQUESTS =====

type SubmitAnswerRequest struct {
	TestSessionID   uint    `json:"test_session_id" validate:"required"`
	QuestionID      uint    `json:"question_id" validate:"required"`
	SelectedOptions []uint  `json:"selected_options" validate:"omitempty,max=20,dive,required"`
	Text            *string `json:"text" validate:"omitempty,max=1000"`
}

type OptionRequest struct {
	ID        uint   `json:"id"`
	Text      string `json:"text" validate:"required,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Text        string          `json:"text" validate:"required,max=2000"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Type        string          `json:"type" validate:"required,question_type"`
	Score       float64         `json:"score" validate:"gt=0"`
	Options     []OptionRequest `json:"options" validate:"max=20,dive"`
}

type CreateTestRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,max=200,dive"`
}

type UpdateTestInfoRequest struct {
	Title              *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string    `json:"description" validate:"omitempty,max=1000"`
	ExpiresAt          *time.Time `json:"expires_at" validate:"omitempty,future_date"`
	ShowCorrectAnswers *bool      `json:"show_correct_answers"`
	ShowQuestionScore  *bool      `json:"show_question_score"`
}

type PublishTestRequest struct {
	ExpiresAt          *time.Time `json:"expires_at" validate:"omitempty,future_date"`
	ShowCorrectAnswers bool       `json:"show_correct_answers"`
	ShowQuestionScore  bool       `json:"show_question_score"`
}

// ===== RESPONDENT VIEWS =====
// These never carry option correctness unless the test allows it.

type OptionView struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type QuestionView struct {
	ID          uint                `json:"id"`
	Text        string              `json:"text"`
	Description *string             `json:"description,omitempty"`
	Type        models.QuestionType `json:"type"`
	Score       float64             `json:"score"`
	Options     []OptionView        `json:"options"`
}

type AnswerView struct {
	ID              uint                 `json:"id"`
	QuestionID      uint                 `json:"question_id"`
	Text            *string              `json:"text,omitempty"`
	SelectedOptions []uint               `json:"selected_options"`
	Score           *float64             `json:"score,omitempty"`
	Status          *models.AnswerStatus `json:"status,omitempty"`
}

type SessionResponse struct {
	ID          uint                 `json:"id"`
	UUID        string               `json:"uuid"`
	Status      models.SessionStatus `json:"status"`
	UserID      *string              `json:"user_id,omitempty"`
	GuestName   *string              `json:"guest_name,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	EndedAt     *time.Time           `json:"ended_at,omitempty"`
	TestID      uint                 `json:"test_id"`
	Title       string               `json:"title"`
	Description *string              `json:"description,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	Questions   []QuestionView       `json:"questions"`
	Answers     []AnswerView         `json:"answers"`
}

type ResultQuestionView struct {
	QuestionView
	Answer *AnswerView `json:"answer,omitempty"`
}

type ResultResponse struct {
	ID                 uint                 `json:"id"`
	SessionUUID        string               `json:"session_uuid"`
	TestID             uint                 `json:"test_id"`
	Title              string               `json:"title"`
	GuestName          *string              `json:"guest_name,omitempty"`
	UserID             *string              `json:"user_id,omitempty"`
	StartedAt          time.Time            `json:"started_at"`
	EndedAt            *time.Time           `json:"ended_at,omitempty"`
	CountCorrect       int                  `json:"count_correct"`
	CountWrong         int                  `json:"count_wrong"`
	CountAlmostCorrect int                  `json:"count_almost_correct"`
	CountSkipped       int                  `json:"count_skipped"`
	Score              float64              `json:"score"`
	MaxScore           float64              `json:"max_score"`
	ShowCorrectAnswers bool                 `json:"show_correct_answers"`
	ShowQuestionScore  bool                 `json:"show_question_score"`
	Questions          []ResultQuestionView `json:"questions"`
	CreatedAt          time.Time            `json:"created_at"`
}

// ===== AUTHOR VIEWS =====

type TestListResponse struct {
	Tests  []*models.Test `json:"tests"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type TestStatistics struct {
	Test             *models.Test `json:"test"`
	TotalSessions    int          `json:"total_sessions"`
	FinishedSessions int          `json:"finished_sessions"`
	AverageScore     float64      `json:"average_score"`
	BestScore        float64      `json:"best_score"`
	MaxScore         float64      `json:"max_score"`
}

type PassedTest struct {
	SessionUUID string             `json:"session_uuid"`
	TestID      uint               `json:"test_id"`
	Title       string             `json:"title"`
	StartedAt   time.Time          `json:"started_at"`
	EndedAt     *time.Time         `json:"ended_at,omitempty"`
	Score       *float64           `json:"score,omitempty"`
	MaxScore    float64            `json:"max_score"`
	Result      *models.TestResult `json:"result,omitempty"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows    int                `json:"total_rows"`
	SuccessCount int                `json:"success_count"`
	ErrorCount   int                `json:"error_count"`
	Errors       []ImportRowError   `json:"errors"`
	Questions    []*models.Question `json:"questions,omitempty"`
}
