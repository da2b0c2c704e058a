package services

import (
	"context"
	"io"
	"strings"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const authorID = "author-1"

type testEnv struct {
	repo      *memoryRepository
	publisher *events.MockEventPublisher
	cache     cache.QuizCache

	tests      TestService
	questions  QuestionService
	sessions   SessionService
	results    ResultService
	statistics StatisticsService
	transfer   ImportExportService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, cache.NewNoopCache())
}

func newTestEnvWithCache(t *testing.T, backend cache.CacheService) *testEnv {
	t.Helper()

	logger := discardLogger()
	repo := newMemoryRepository()
	publisher := events.NewMockEventPublisher(logger)
	eventService := NewEventService(publisher, logger)
	quizCache := cache.NewQuizCache(backend, 0)
	v := validator.New()

	results := NewResultService(repo, quizCache, eventService, logger)
	return &testEnv{
		repo:       repo,
		publisher:  publisher,
		cache:      quizCache,
		tests:      NewTestService(repo, NewCodeGenerator(repo.Tests(), logger), quizCache, eventService, logger, v),
		questions:  NewQuestionService(repo, quizCache, logger, v),
		sessions:   NewSessionService(repo, results, quizCache, logger, v),
		results:    results,
		statistics: NewStatisticsService(repo, logger),
		transfer:   NewImportExportService(repo, logger, v),
	}
}

func option(text string, correct bool) OptionRequest {
	return OptionRequest{Text: text, IsCorrect: correct}
}

// sampleTestRequest builds a four question test worth 7 points:
// single (2), multiple with three correct options (3), text (1), single (1).
func sampleTestRequest() *CreateTestRequest {
	return &CreateTestRequest{
		Title: "Geography",
		Questions: []QuestionRequest{
			{Text: "Capital of Italy?", Type: "SINGLE", Score: 2, Options: []OptionRequest{
				option("Rome", true), option("Milan", false),
			}},
			{Text: "Pick the EU members", Type: "MULTIPLE", Score: 3, Options: []OptionRequest{
				option("France", true), option("Spain", true), option("Poland", true), option("Norway", false),
			}},
			{Text: "Capital of France?", Type: "TEXT", Score: 1, Options: []OptionRequest{
				option("Paris", false),
			}},
			{Text: "Largest ocean?", Type: "SINGLE", Score: 1, Options: []OptionRequest{
				option("Pacific", true), option("Atlantic", false),
			}},
		},
	}
}

func (e *testEnv) publishSample(t *testing.T, showCorrect, showScore bool) *models.Test {
	t.Helper()
	ctx := context.Background()

	test, err := e.tests.CreateTest(ctx, sampleTestRequest(), authorID)
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	published, err := e.tests.PublishTest(ctx, test.ID, &PublishTestRequest{
		ExpiresAt:          &expires,
		ShowCorrectAnswers: showCorrect,
		ShowQuestionScore:  showScore,
	}, authorID)
	require.NoError(t, err)
	require.NotNil(t, published.Code)

	full, err := e.tests.GetTest(ctx, test.ID, authorID)
	require.NoError(t, err)
	require.Len(t, full.Questions, 4)
	return full
}

func (e *testEnv) joinAsGuest(t *testing.T, test *models.Test, name string) *SessionResponse {
	t.Helper()
	session, err := e.sessions.Join(context.Background(), *test.Code, models.Identity{GuestName: name})
	require.NoError(t, err)
	return session
}

func (e *testEnv) submit(t *testing.T, sessionID, questionID uint, options []uint, text *string) {
	t.Helper()
	_, err := e.sessions.SubmitAnswer(context.Background(), &SubmitAnswerRequest{
		TestSessionID:   sessionID,
		QuestionID:      questionID,
		SelectedOptions: options,
		Text:            text,
	})
	require.NoError(t, err)
}

func optionID(q models.Question, text string) uint {
	for _, o := range q.Options {
		if o.Text == text {
			return o.ID
		}
	}
	return 0
}

func strPtr(s string) *string { return &s }

func toLower(s string) string { return strings.ToLower(s) }
