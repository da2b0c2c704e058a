package services

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type testService struct {
	repo      repositories.Repository
	codes     CodeGenerator
	cache     cache.QuizCache
	events    EventService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(
	repo repositories.Repository,
	codes CodeGenerator,
	quizCache cache.QuizCache,
	eventService EventService,
	logger *slog.Logger,
	validator *validator.Validator,
) TestService {
	return &testService{
		repo:      repo,
		codes:     codes,
		cache:     quizCache,
		events:    eventService,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *testService) CreateTest(ctx context.Context, req *CreateTestRequest, authorID string) (*models.Test, error) {
	op := startOperation(ctx, s.logger, "Create test", "author_id", authorID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		op.Done(err)
		return nil, err
	}

	test := &models.Test{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		AuthorID:    authorID,
		Status:      models.TestStatusDraft,
		Questions:   make([]models.Question, 0, len(req.Questions)),
	}
	for i := range req.Questions {
		question, err := buildQuestion(s.validator, &req.Questions[i])
		if err != nil {
			op.Done(err)
			return nil, err
		}
		for j := range question.Options {
			question.Options[j].ID = 0
		}
		test.Questions = append(test.Questions, *question)
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Tests().Create(ctx, tx, test); err != nil {
			return classifyRepoError("create test", ResourceTest, test.Title, err)
		}
		return nil
	})
	if err != nil {
		op.Done(err)
		return nil, err
	}

	op.Done(nil, "test_id", test.ID)
	return s.getOwnedTest(ctx, nil, test.ID, authorID, true)
}

func (s *testService) GetTest(ctx context.Context, id uint, userID string) (*models.Test, error) {
	return s.getOwnedTest(ctx, nil, id, userID, true)
}

func (s *testService) ListMyTests(ctx context.Context, userID string, filters repositories.TestFilters) (*TestListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	tests, total, err := s.repo.Tests().ListByAuthor(ctx, nil, userID, filters)
	if err != nil {
		return nil, classifyRepoError("list tests", ResourceTest, userID, err)
	}

	return &TestListResponse{
		Tests:  tests,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *testService) UpdateTestInfo(ctx context.Context, id uint, req *UpdateTestInfoRequest, userID string) (*models.Test, error) {
	op := startOperation(ctx, s.logger, "Update test", "test_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		op.Done(err)
		return nil, err
	}

	test, err := s.getOwnedTest(ctx, nil, id, userID, false)
	if err != nil {
		op.Done(err)
		return nil, err
	}

	if req.Title != nil {
		test.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.ExpiresAt != nil {
		test.ExpiresAt = req.ExpiresAt
	}
	if req.ShowCorrectAnswers != nil {
		test.ShowCorrectAnswers = *req.ShowCorrectAnswers
	}
	if req.ShowQuestionScore != nil {
		test.ShowQuestionScore = *req.ShowQuestionScore
	}

	if err := s.repo.Tests().Update(ctx, nil, test); err != nil {
		err = classifyRepoError("update test", ResourceTest, id, err)
		op.Done(err)
		return nil, err
	}

	// cached results embed the display flags
	s.invalidateResults(ctx, id)

	op.Done(nil)
	return s.getOwnedTest(ctx, nil, id, userID, true)
}

func (s *testService) DeleteTest(ctx context.Context, id uint, userID string) error {
	op := startOperation(ctx, s.logger, "Delete test", "test_id", id, "user_id", userID)

	test, err := s.getOwnedTest(ctx, nil, id, userID, false)
	if err != nil {
		op.Done(err)
		return err
	}

	s.invalidateResults(ctx, id)
	if err := s.repo.Tests().Delete(ctx, nil, id); err != nil {
		err = classifyRepoError("delete test", ResourceTest, id, err)
		op.Done(err)
		return err
	}
	if test.Code != nil {
		_ = s.cache.DeleteTestCode(ctx, *test.Code)
	}

	op.Done(nil)
	return nil
}

// PublishTest issues a fresh join code and opens the test to respondents.
// Publishing again replaces the code.
func (s *testService) PublishTest(ctx context.Context, id uint, req *PublishTestRequest, userID string) (*models.Test, error) {
	op := startOperation(ctx, s.logger, "Publish test", "test_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		op.Done(err)
		return nil, err
	}

	var previousCode *string
	var published *models.Test
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		test, err := s.getOwnedTest(ctx, tx, id, userID, true)
		if err != nil {
			return err
		}
		if len(test.Questions) == 0 {
			return newValidationError("questions", "test must have at least 1 question to be published", 0)
		}

		code, err := s.codes.Generate(ctx, tx)
		if err != nil {
			return err
		}

		previousCode = test.Code
		test.Code = &code
		test.Status = models.TestStatusPublished
		test.ExpiresAt = req.ExpiresAt
		test.ShowCorrectAnswers = req.ShowCorrectAnswers
		test.ShowQuestionScore = req.ShowQuestionScore

		if err := s.repo.Tests().Update(ctx, tx, test); err != nil {
			return classifyRepoError("publish test", ResourceTest, id, err)
		}
		published = test
		return nil
	})
	if err != nil {
		op.Done(err)
		return nil, err
	}

	if previousCode != nil {
		_ = s.cache.DeleteTestCode(ctx, *previousCode)
	}
	s.invalidateResults(ctx, id)
	if err := s.events.NotifyTestPublished(ctx, published); err != nil {
		s.logger.Warn("Failed to publish test published event", "test_id", id, "error", err)
	}

	op.Done(nil, "code", *published.Code)
	return published, nil
}

// ===== HELPERS =====

// getOwnedTest loads a test and checks that userID authored it
func (s *testService) getOwnedTest(ctx context.Context, tx *gorm.DB, id uint, userID string, withQuestions bool) (*models.Test, error) {
	return loadOwnedTest(ctx, s.repo, tx, id, userID, withQuestions)
}

func (s *testService) invalidateResults(ctx context.Context, testID uint) {
	invalidateTestResults(ctx, s.repo, s.cache, s.logger, testID)
}

// invalidateTestResults drops cached results of every session of the test.
// Cached results embed the test graph, so any edit to it must call this.
func invalidateTestResults(ctx context.Context, repo repositories.Repository, quizCache cache.QuizCache, logger *slog.Logger, testID uint) {
	uuids, err := repo.Sessions().ListUUIDsByTest(ctx, nil, testID)
	if err != nil {
		logger.Warn("Failed to list sessions for cache invalidation", "test_id", testID, "error", err)
		return
	}
	if err := quizCache.DeleteResults(ctx, uuids...); err != nil {
		logger.Warn("Failed to invalidate cached results", "test_id", testID, "error", err)
	}
}

func loadOwnedTest(ctx context.Context, repo repositories.Repository, tx *gorm.DB, id uint, userID string, withQuestions bool) (*models.Test, error) {
	var (
		test *models.Test
		err  error
	)
	if withQuestions {
		test, err = repo.Tests().GetByIDWithQuestions(ctx, tx, id)
	} else {
		test, err = repo.Tests().GetByID(ctx, tx, id)
	}
	if err != nil {
		return nil, classifyRepoError("get test", ResourceTest, id, err)
	}
	if test.AuthorID != userID {
		return nil, apperrors.NewForbiddenError(userID, ResourceTest, "access")
	}
	return test, nil
}

// buildQuestion validates a question request and turns it into a model
func buildQuestion(v *validator.Validator, req *QuestionRequest) (*models.Question, error) {
	if err := v.Validate(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		Text:        strings.TrimSpace(req.Text),
		Description: req.Description,
		Type:        models.QuestionType(req.Type),
		Score:       req.Score,
		Options:     make([]models.Option, 0, len(req.Options)),
	}
	for _, o := range req.Options {
		question.Options = append(question.Options, models.Option{
			ID:        o.ID,
			Text:      strings.TrimSpace(o.Text),
			IsCorrect: o.IsCorrect,
		})
	}

	v.Question().NormalizeTextOptions(question)
	if err := v.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}
