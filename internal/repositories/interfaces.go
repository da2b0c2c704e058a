package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Status    *models.TestStatus `json:"status"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title", "updated_at"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type TestStats struct {
	TestID           uint    `json:"test_id"`
	TotalSessions    int64   `json:"total_sessions"`
	FinishedSessions int64   `json:"finished_sessions"`
	AverageScore     float64 `json:"average_score"`
	MaxScore         float64 `json:"max_score"`
	BestScore        float64 `json:"best_score"`
}

// ===== REPOSITORY INTERFACES =====
// Every method takes an optional transaction. A nil tx runs against the base connection.

type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetPublishedByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Test, error)
	ListByAuthor(ctx context.Context, tx *gorm.DB, authorID string, filters TestFilters) ([]*models.Test, int64, error)
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string) (bool, error)

	// Statistics
	GetWithSessions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	ListWithSessionsByAuthor(ctx context.Context, tx *gorm.DB, authorID string) ([]*models.Test, error)
	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*TestStats, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	// ReplaceOptions upserts the given options by id and deletes the question's other options.
	ReplaceOptions(ctx context.Context, tx *gorm.DB, questionID uint, options []models.Option) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestSession, error)
	// LockSharedByID selects the bare session row FOR SHARE. Writers holding it
	// block a concurrent LockByUUID until they commit.
	LockSharedByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestSession, error)
	// GetByUUID loads the session with its test, questions, options and answers.
	GetByUUID(ctx context.Context, tx *gorm.DB, uuid string) (*models.TestSession, error)
	// LockByUUID selects the bare session row FOR UPDATE. Only meaningful inside a transaction.
	LockByUUID(ctx context.Context, tx *gorm.DB, uuid string) (*models.TestSession, error)
	// MarkFinished moves an IN_PROGRESS session to FINISHED. It reports false when
	// the session was not IN_PROGRESS.
	MarkFinished(ctx context.Context, tx *gorm.DB, id uint, endedAt time.Time) (bool, error)
	ListFinishedByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.TestSession, error)
	ListUUIDsByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]string, error)
}

type AnswerRepository interface {
	// Upsert creates or updates the answer keyed by (test_session_id, question_id)
	// and replaces its selected options.
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer, selected []models.Option) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error)
	UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score float64, status models.AnswerStatus) error
}

type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error
	// GetBySessionID loads the result with the nested session, test and answer graph.
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.TestResult, error)
}

// Repository groups the repositories that share one connection.
type Repository interface {
	Tests() TestRepository
	Questions() QuestionRepository
	Sessions() SessionRepository
	Answers() AnswerRepository
	Results() ResultRepository

	// WithTransaction runs fn in one transaction. An error returned by fn rolls it back.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
