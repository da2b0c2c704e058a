package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

func TestStatisticsService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	test := env.publishSample(t, false, false)

	first := env.joinAsGuest(t, test, "Ann")
	answerSample(t, env, test, first)
	_, err := env.sessions.Finish(ctx, first.UUID)
	require.NoError(t, err)

	second, err := env.sessions.Join(ctx, *test.Code, models.Identity{UserID: "student-1"})
	require.NoError(t, err)
	env.submit(t, second.ID, test.Questions[0].ID, []uint{optionID(test.Questions[0], "Rome")}, nil)
	_, err = env.sessions.Finish(ctx, second.UUID)
	require.NoError(t, err)

	env.joinAsGuest(t, test, "Carl")

	t.Run("single test", func(t *testing.T) {
		stats, err := env.statistics.TestStatistics(ctx, test.ID, authorID)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalSessions)
		assert.Equal(t, 2, stats.FinishedSessions)
		assert.InDelta(t, 3.5, stats.AverageScore, 1e-9)
		assert.InDelta(t, 5.0, stats.BestScore, 1e-9)
		assert.InDelta(t, 7.0, stats.MaxScore, 1e-9)
		assert.Len(t, stats.Test.TestSessions, 3)

		_, err = env.statistics.TestStatistics(ctx, test.ID, "someone-else")
		assert.True(t, IsForbidden(err))
	})

	t.Run("author overview", func(t *testing.T) {
		all, err := env.statistics.AuthorStatistics(ctx, authorID)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 2, all[0].FinishedSessions)
		assert.InDelta(t, 3.5, all[0].AverageScore, 1e-9)

		none, err := env.statistics.AuthorStatistics(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("passed tests", func(t *testing.T) {
		passed, err := env.statistics.PassedTests(ctx, "student-1")
		require.NoError(t, err)
		require.Len(t, passed, 1)
		assert.Equal(t, second.UUID, passed[0].SessionUUID)
		assert.Equal(t, "Geography", passed[0].Title)
		require.NotNil(t, passed[0].Score)
		assert.InDelta(t, 2.0, *passed[0].Score, 1e-9)
		assert.InDelta(t, 7.0, passed[0].MaxScore, 1e-9)
	})
}
