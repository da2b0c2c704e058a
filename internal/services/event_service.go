package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// EventService turns domain changes into published events
type EventService interface {
	NotifySessionFinished(ctx context.Context, session *models.TestSession, result *models.TestResult) error
	NotifyTestPublished(ctx context.Context, test *models.Test) error
}

type eventService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEventService(publisher events.EventPublisher, logger *slog.Logger) EventService {
	return &eventService{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *eventService) NotifySessionFinished(ctx context.Context, session *models.TestSession, result *models.TestResult) error {
	s.logger.Info("Publishing session finished event", "session_uuid", session.UUID, "result_id", result.ID)

	finishedAt := result.CreatedAt
	if session.EndedAt != nil {
		finishedAt = *session.EndedAt
	}

	return s.publisher.PublishEvent(ctx, events.NewQuizEvent(events.EventSessionFinished, events.SessionFinishedEvent{
		SessionUUID:        session.UUID,
		TestID:             session.TestID,
		UserID:             session.UserID,
		GuestName:          session.GuestName,
		ResultID:           result.ID,
		Score:              result.Score,
		CountCorrect:       result.CountCorrect,
		CountWrong:         result.CountWrong,
		CountAlmostCorrect: result.CountAlmostCorrect,
		CountSkipped:       result.CountSkipped,
		FinishedAt:         finishedAt,
	}))
}

func (s *eventService) NotifyTestPublished(ctx context.Context, test *models.Test) error {
	s.logger.Info("Publishing test published event", "test_id", test.ID)

	var code string
	if test.Code != nil {
		code = *test.Code
	}

	return s.publisher.PublishEvent(ctx, events.NewQuizEvent(events.EventTestPublished, events.TestPublishedEvent{
		TestID:    test.ID,
		Title:     test.Title,
		Code:      code,
		AuthorID:  test.AuthorID,
		ExpiresAt: test.ExpiresAt,
	}))
}
