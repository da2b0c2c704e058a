package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// SessionService drives a respondent's session from join to result
type SessionService interface {
	Join(ctx context.Context, code string, identity models.Identity) (*SessionResponse, error)
	GetSession(ctx context.Context, uuid string) (*SessionResponse, error)
	SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*AnswerView, error)
	Finish(ctx context.Context, uuid string) (*ResultResponse, error)
	GetResult(ctx context.Context, uuid string) (*ResultResponse, error)
}

// ResultService scores a session and persists its result exactly once
type ResultService interface {
	Finalize(ctx context.Context, uuid string) (*models.TestResult, error)
}

type TestService interface {
	CreateTest(ctx context.Context, req *CreateTestRequest, authorID string) (*models.Test, error)
	GetTest(ctx context.Context, id uint, userID string) (*models.Test, error)
	ListMyTests(ctx context.Context, userID string, filters repositories.TestFilters) (*TestListResponse, error)
	UpdateTestInfo(ctx context.Context, id uint, req *UpdateTestInfoRequest, userID string) (*models.Test, error)
	DeleteTest(ctx context.Context, id uint, userID string) error
	PublishTest(ctx context.Context, id uint, req *PublishTestRequest, userID string) (*models.Test, error)
}

type QuestionService interface {
	CreateQuestion(ctx context.Context, testID uint, req *QuestionRequest, userID string) (*models.Question, error)
	UpdateQuestion(ctx context.Context, testID, questionID uint, req *QuestionRequest, userID string) (*models.Question, error)
	DeleteQuestion(ctx context.Context, testID, questionID uint, userID string) error
}

type StatisticsService interface {
	AuthorStatistics(ctx context.Context, userID string) ([]*TestStatistics, error)
	TestStatistics(ctx context.Context, testID uint, userID string) (*TestStatistics, error)
	PassedTests(ctx context.Context, userID string) ([]*PassedTest, error)
}

// ImportExportService moves questions and results in and out as XLSX
type ImportExportService interface {
	ImportQuestions(ctx context.Context, testID uint, reader io.Reader, filename string, userID string) (*ImportResult, error)
	ExportTestResults(ctx context.Context, testID uint, userID string) ([]byte, error)
}

// CodeGenerator issues unique join codes for published tests
type CodeGenerator interface {
	Generate(ctx context.Context, tx *gorm.DB) (string, error)
}
