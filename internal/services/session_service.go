package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const maxGuestNameLength = 100

type sessionService struct {
	repo      repositories.Repository
	results   ResultService
	cache     cache.QuizCache
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewSessionService(
	repo repositories.Repository,
	results ResultService,
	quizCache cache.QuizCache,
	logger *slog.Logger,
	validator *validator.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		results:   results,
		cache:     quizCache,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Join opens a new IN_PROGRESS session on the published test with the given code.
func (s *sessionService) Join(ctx context.Context, code string, identity models.Identity) (*SessionResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	op := startOperation(ctx, s.logger, "Join test", "code", code, "user_id", identity.UserID)

	if code == "" {
		err := newValidationError("code", "is required", code)
		op.Done(err)
		return nil, err
	}

	guestName := strings.TrimSpace(identity.GuestName)
	if identity.IsGuest() && guestName == "" {
		err := newValidationError("guest_name", "is required", identity.GuestName)
		op.Done(err)
		return nil, err
	}
	if len(guestName) > maxGuestNameLength {
		err := newValidationError("guest_name", "must be at most 100 characters", len(guestName))
		op.Done(err)
		return nil, err
	}

	test, err := s.findPublishedTest(ctx, code)
	if err != nil {
		op.Done(err)
		return nil, err
	}
	if test.IsExpired(s.now()) {
		err := apperrors.NewInvalidStateError(ResourceTest, "EXPIRED", "join")
		op.Done(err)
		return nil, err
	}

	session := &models.TestSession{
		UUID:      uuid.NewString(),
		TestID:    test.ID,
		Status:    models.SessionInProgress,
		StartedAt: s.now().UTC(),
	}
	if !identity.IsGuest() {
		userID := identity.UserID
		session.UserID = &userID
	}
	if guestName != "" {
		session.GuestName = &guestName
	}

	if err := s.repo.Sessions().Create(ctx, nil, session); err != nil {
		err = classifyRepoError("create session", ResourceSession, code, err)
		op.Done(err)
		return nil, err
	}

	op.Done(nil, "session_uuid", session.UUID, "test_id", test.ID)
	return s.GetSession(ctx, session.UUID)
}

// findPublishedTest resolves a join code, consulting the cache first. A cached id
// is trusted only if the test still carries that code and is published.
func (s *sessionService) findPublishedTest(ctx context.Context, code string) (*models.Test, error) {
	if id, err := s.cache.GetTestID(ctx, code); err == nil {
		test, err := s.repo.Tests().GetByID(ctx, nil, id)
		if err == nil && test.Status == models.TestStatusPublished && test.Code != nil && *test.Code == code {
			return test, nil
		}
		_ = s.cache.DeleteTestCode(ctx, code)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Test code cache unavailable", "error", err)
	}

	test, err := s.repo.Tests().GetPublishedByCode(ctx, nil, code)
	if err != nil {
		return nil, classifyRepoError("find test by code", ResourceTest, code, err)
	}
	if err := s.cache.SetTestID(ctx, code, test.ID); err != nil {
		s.logger.Warn("Failed to cache test code", "code", code, "error", err)
	}
	return test, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionUUID string) (*SessionResponse, error) {
	session, err := s.repo.Sessions().GetByUUID(ctx, nil, sessionUUID)
	if err != nil {
		return nil, classifyRepoError("get session", ResourceSession, sessionUUID, err)
	}
	return buildSessionResponse(session), nil
}

// SubmitAnswer stores the respondent's selection for one question, replacing any
// earlier selection. Only IN_PROGRESS sessions accept answers.
func (s *sessionService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*AnswerView, error) {
	op := startOperation(ctx, s.logger, "Submit answer",
		"session_id", req.TestSessionID, "question_id", req.QuestionID)

	answer, err := s.submitAnswer(ctx, req)
	if err != nil {
		op.Done(err)
		return nil, err
	}

	op.Done(nil, "answer_id", answer.ID)
	view := answerView(*answer, false, false)
	return &view, nil
}

// submitAnswer holds a shared lock on the session row while it writes, so an
// answer cannot land after a concurrent Finalize committed.
func (s *sessionService) submitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*models.Answer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var answer *models.Answer
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		session, err := s.repo.Sessions().LockSharedByID(ctx, tx, req.TestSessionID)
		if err != nil {
			return classifyRepoError("get session", ResourceSession, req.TestSessionID, err)
		}
		if session.IsFinished() {
			return apperrors.NewInvalidStateError(ResourceSession, string(session.Status), "answer")
		}

		question, err := s.repo.Questions().GetByID(ctx, tx, req.QuestionID)
		if err != nil {
			return classifyRepoError("get question", ResourceQuestion, req.QuestionID, err)
		}
		if question.TestID != session.TestID {
			return newValidationError("question_id", "is not part of this test", req.QuestionID)
		}

		selected, err := resolveSelectedOptions(question, req.SelectedOptions)
		if err != nil {
			return err
		}

		answer = &models.Answer{
			TestSessionID: session.ID,
			QuestionID:    question.ID,
		}
		if question.Type == models.QuestionText {
			if len(selected) > 0 {
				return newValidationError("selected_options", "text questions take a text answer", req.SelectedOptions)
			}
			if req.Text != nil {
				text := strings.TrimSpace(*req.Text)
				answer.Text = &text
			}
		} else if req.Text != nil && strings.TrimSpace(*req.Text) != "" {
			return newValidationError("text", "only text questions take a text answer", *req.Text)
		}

		if err := s.repo.Answers().Upsert(ctx, tx, answer, selected); err != nil {
			return classifyRepoError("upsert answer", ResourceSession, req.TestSessionID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// resolveSelectedOptions maps ids to the question's options, dropping duplicates.
func resolveSelectedOptions(question *models.Question, ids []uint) ([]models.Option, error) {
	byID := make(map[uint]models.Option, len(question.Options))
	for _, o := range question.Options {
		byID[o.ID] = o
	}

	seen := make(map[uint]struct{}, len(ids))
	selected := make([]models.Option, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		option, ok := byID[id]
		if !ok {
			return nil, newValidationError("selected_options", "option does not belong to the question", id)
		}
		selected = append(selected, option)
	}

	if question.Type == models.QuestionSingle && len(selected) > 1 {
		return nil, newValidationError("selected_options", "single choice question accepts one option", len(selected))
	}
	return selected, nil
}

func (s *sessionService) Finish(ctx context.Context, sessionUUID string) (*ResultResponse, error) {
	result, err := s.results.Finalize(ctx, sessionUUID)
	if err != nil {
		return nil, err
	}
	return buildResultResponse(result), nil
}

// GetResult returns the finished result, from cache when possible.
func (s *sessionService) GetResult(ctx context.Context, sessionUUID string) (*ResultResponse, error) {
	if cached, err := s.cache.GetResult(ctx, sessionUUID); err == nil {
		return buildResultResponse(cached), nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Result cache unavailable", "session_uuid", sessionUUID, "error", err)
	}

	session, err := s.repo.Sessions().GetByUUID(ctx, nil, sessionUUID)
	if err != nil {
		return nil, classifyRepoError("get session", ResourceSession, sessionUUID, err)
	}
	if !session.IsFinished() {
		return nil, apperrors.NewNotFoundError(ResourceResult, sessionUUID)
	}

	result, err := s.repo.Results().GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		return nil, classifyRepoError("get result", ResourceResult, sessionUUID, err)
	}

	if err := s.cache.SetResult(ctx, sessionUUID, result); err != nil {
		s.logger.Warn("Failed to cache test result", "session_uuid", sessionUUID, "error", err)
	}
	return buildResultResponse(result), nil
}
