package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	cache     cache.QuizCache
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, quizCache cache.QuizCache, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		cache:     quizCache,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) CreateQuestion(ctx context.Context, testID uint, req *QuestionRequest, userID string) (*models.Question, error) {
	op := startOperation(ctx, s.logger, "Create question", "test_id", testID, "user_id", userID)

	question, err := buildQuestion(s.validator, req)
	if err != nil {
		op.Done(err)
		return nil, err
	}
	question.TestID = testID
	for i := range question.Options {
		question.Options[i].ID = 0
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := loadOwnedTest(ctx, s.repo, tx, testID, userID, false); err != nil {
			return err
		}
		if err := s.repo.Questions().Create(ctx, tx, question); err != nil {
			return classifyRepoError("create question", ResourceQuestion, testID, err)
		}
		return nil
	})
	if err != nil {
		op.Done(err)
		return nil, err
	}

	invalidateTestResults(ctx, s.repo, s.cache, s.logger, testID)

	op.Done(nil, "question_id", question.ID)
	return question, nil
}

// UpdateQuestion replaces the question and its option set. Options sent with an
// id are updated, options without one are created, the rest are deleted.
func (s *questionService) UpdateQuestion(ctx context.Context, testID, questionID uint, req *QuestionRequest, userID string) (*models.Question, error) {
	op := startOperation(ctx, s.logger, "Update question", "test_id", testID, "question_id", questionID, "user_id", userID)

	updated, err := buildQuestion(s.validator, req)
	if err != nil {
		op.Done(err)
		return nil, err
	}

	var question *models.Question
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.getTestQuestion(ctx, tx, testID, questionID, userID)
		if err != nil {
			return err
		}

		for _, o := range updated.Options {
			if o.ID != 0 && !current.HasOption(o.ID) {
				return newValidationError("options", "option does not belong to the question", o.ID)
			}
		}

		current.Text = updated.Text
		current.Description = updated.Description
		current.Type = updated.Type
		current.Score = updated.Score

		if err := s.repo.Questions().Update(ctx, tx, current); err != nil {
			return classifyRepoError("update question", ResourceQuestion, questionID, err)
		}
		if err := s.repo.Questions().ReplaceOptions(ctx, tx, questionID, updated.Options); err != nil {
			return classifyRepoError("replace options", ResourceQuestion, questionID, err)
		}

		question, err = s.repo.Questions().GetByID(ctx, tx, questionID)
		if err != nil {
			return classifyRepoError("reload question", ResourceQuestion, questionID, err)
		}
		return nil
	})
	if err != nil {
		op.Done(err)
		return nil, err
	}
	invalidateTestResults(ctx, s.repo, s.cache, s.logger, testID)

	op.Done(nil)
	return question, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, testID, questionID uint, userID string) error {
	op := startOperation(ctx, s.logger, "Delete question", "test_id", testID, "question_id", questionID, "user_id", userID)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.getTestQuestion(ctx, tx, testID, questionID, userID); err != nil {
			return err
		}
		if err := s.repo.Questions().Delete(ctx, tx, questionID); err != nil {
			return classifyRepoError("delete question", ResourceQuestion, questionID, err)
		}
		return nil
	})
	if err == nil {
		invalidateTestResults(ctx, s.repo, s.cache, s.logger, testID)
	}

	op.Done(err)
	return err
}

// getTestQuestion checks ownership of the test and that the question belongs to it
func (s *questionService) getTestQuestion(ctx context.Context, tx *gorm.DB, testID, questionID uint, userID string) (*models.Question, error) {
	if _, err := loadOwnedTest(ctx, s.repo, tx, testID, userID, false); err != nil {
		return nil, err
	}

	question, err := s.repo.Questions().GetByID(ctx, tx, questionID)
	if err != nil {
		return nil, classifyRepoError("get question", ResourceQuestion, questionID, err)
	}
	if question.TestID != testID {
		return nil, classifyRepoError("get question", ResourceQuestion, questionID, gorm.ErrRecordNotFound)
	}
	return question, nil
}
