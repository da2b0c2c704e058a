package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/scoring"
)

type resultService struct {
	repo   repositories.Repository
	cache  cache.QuizCache
	events EventService
	logger *slog.Logger
	now    func() time.Time
}

func NewResultService(repo repositories.Repository, quizCache cache.QuizCache, eventService EventService, logger *slog.Logger) ResultService {
	return &resultService{
		repo:   repo,
		cache:  quizCache,
		events: eventService,
		logger: logger,
		now:    time.Now,
	}
}

// Finalize moves the session to FINISHED, scores every question of its test and
// stores one TestResult, all in one transaction. The session row is locked and
// the status change is conditional, so a second call fails with InvalidStateError.
func (s *resultService) Finalize(ctx context.Context, uuid string) (*models.TestResult, error) {
	op := startOperation(ctx, s.logger, "Finalize session", "session_uuid", uuid)

	var session *models.TestSession
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		session, err = s.repo.Sessions().LockByUUID(ctx, tx, uuid)
		if err != nil {
			return classifyRepoError("lock session", ResourceSession, uuid, err)
		}
		if session.IsFinished() {
			return apperrors.NewInvalidStateError(ResourceSession, string(session.Status), "finish")
		}

		endedAt := s.now().UTC()
		moved, err := s.repo.Sessions().MarkFinished(ctx, tx, session.ID, endedAt)
		if err != nil {
			return classifyRepoError("finish session", ResourceSession, uuid, err)
		}
		if !moved {
			return apperrors.NewInvalidStateError(ResourceSession, string(models.SessionFinished), "finish")
		}
		session.Status = models.SessionFinished
		session.EndedAt = &endedAt

		test, err := s.repo.Tests().GetByIDWithQuestions(ctx, tx, session.TestID)
		if err != nil {
			return classifyRepoError("load test", ResourceTest, session.TestID, err)
		}
		answers, err := s.repo.Answers().ListBySession(ctx, tx, session.ID)
		if err != nil {
			return classifyRepoError("load answers", ResourceSession, uuid, err)
		}

		tally := scoring.Aggregate(test.Questions, answers)
		for _, outcome := range tally.Outcomes {
			if outcome.AnswerID == nil {
				continue
			}
			if err := s.repo.Answers().UpdateScore(ctx, tx, *outcome.AnswerID, outcome.Score, outcome.Status); err != nil {
				return classifyRepoError("score answer", ResourceSession, uuid, err)
			}
		}

		breakdown, err := json.Marshal(tally.Outcomes)
		if err != nil {
			return fmt.Errorf("failed to encode result breakdown: %w", err)
		}

		result := &models.TestResult{
			TestSessionID:      session.ID,
			UserID:             session.UserID,
			CountCorrect:       tally.Correct,
			CountWrong:         tally.Wrong,
			CountAlmostCorrect: tally.AlmostCorrect,
			CountSkipped:       tally.Skipped,
			Score:              tally.Total,
			Breakdown:          datatypes.JSON(breakdown),
		}
		if err := s.repo.Results().Create(ctx, tx, result); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewInvalidStateError(ResourceSession, string(models.SessionFinished), "finish")
			}
			return classifyRepoError("create result", ResourceResult, uuid, err)
		}
		return nil
	})
	if err != nil {
		op.Done(err)
		return nil, err
	}

	result, err := s.repo.Results().GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		err = classifyRepoError("load result", ResourceResult, uuid, err)
		op.Done(err)
		return nil, err
	}

	s.afterCommit(ctx, session, result)
	op.Done(nil, "result_id", result.ID, "score", result.Score)
	return result, nil
}

// afterCommit caches the result and announces it. Failures are logged only;
// the result is already durable.
func (s *resultService) afterCommit(ctx context.Context, session *models.TestSession, result *models.TestResult) {
	if err := s.cache.SetResult(ctx, session.UUID, result); err != nil {
		s.logger.Warn("Failed to cache test result", "session_uuid", session.UUID, "error", err)
	}
	if err := s.events.NotifySessionFinished(ctx, session, result); err != nil {
		s.logger.Warn("Failed to publish session finished event", "session_uuid", session.UUID, "error", err)
	}
}
