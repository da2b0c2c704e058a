package services

import (
	"context"
	"log/slog"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type statisticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewStatisticsService(repo repositories.Repository, logger *slog.Logger) StatisticsService {
	return &statisticsService{
		repo:   repo,
		logger: logger,
	}
}

// AuthorStatistics summarizes every test of the author from its loaded sessions
func (s *statisticsService) AuthorStatistics(ctx context.Context, userID string) ([]*TestStatistics, error) {
	tests, err := s.repo.Tests().ListWithSessionsByAuthor(ctx, nil, userID)
	if err != nil {
		return nil, classifyRepoError("list test statistics", ResourceTest, userID, err)
	}

	stats := make([]*TestStatistics, 0, len(tests))
	for _, test := range tests {
		stats = append(stats, summarizeTest(test))
	}
	return stats, nil
}

// TestStatistics returns one test with its sessions and the aggregates computed by the store
func (s *statisticsService) TestStatistics(ctx context.Context, testID uint, userID string) (*TestStatistics, error) {
	test, err := s.repo.Tests().GetWithSessions(ctx, nil, testID)
	if err != nil {
		return nil, classifyRepoError("get test statistics", ResourceTest, testID, err)
	}
	if test.AuthorID != userID {
		return nil, apperrors.NewForbiddenError(userID, ResourceTest, "view statistics")
	}

	agg, err := s.repo.Tests().GetStats(ctx, nil, testID)
	if err != nil {
		return nil, classifyRepoError("aggregate test statistics", ResourceTest, testID, err)
	}

	return &TestStatistics{
		Test:             test,
		TotalSessions:    int(agg.TotalSessions),
		FinishedSessions: int(agg.FinishedSessions),
		AverageScore:     agg.AverageScore,
		BestScore:        agg.BestScore,
		MaxScore:         agg.MaxScore,
	}, nil
}

func (s *statisticsService) PassedTests(ctx context.Context, userID string) ([]*PassedTest, error) {
	sessions, err := s.repo.Sessions().ListFinishedByUser(ctx, nil, userID)
	if err != nil {
		return nil, classifyRepoError("list passed tests", ResourceSession, userID, err)
	}

	passed := make([]*PassedTest, 0, len(sessions))
	for _, session := range sessions {
		item := &PassedTest{
			SessionUUID: session.UUID,
			TestID:      session.TestID,
			StartedAt:   session.StartedAt,
			EndedAt:     session.EndedAt,
			Result:      session.TestResult,
		}
		if session.Test != nil {
			item.Title = session.Test.Title
			item.MaxScore = session.Test.MaxScore()
		}
		if session.TestResult != nil {
			score := session.TestResult.Score
			item.Score = &score
		}
		passed = append(passed, item)
	}
	return passed, nil
}

func summarizeTest(test *models.Test) *TestStatistics {
	stats := &TestStatistics{
		Test:          test,
		TotalSessions: len(test.TestSessions),
		MaxScore:      test.MaxScore(),
	}

	var sum float64
	var scored int
	for _, session := range test.TestSessions {
		if session.IsFinished() {
			stats.FinishedSessions++
		}
		if session.TestResult == nil {
			continue
		}
		score := session.TestResult.Score
		if scored == 0 || score > stats.BestScore {
			stats.BestScore = score
		}
		sum += score
		scored++
	}
	if scored > 0 {
		stats.AverageScore = sum / float64(scored)
	}
	return stats
}
