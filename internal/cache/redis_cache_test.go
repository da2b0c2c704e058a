package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, CacheService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mr, NewRedisCache(client, logger)
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", 1, 0))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	mr, c := newTestCache(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var got map[string]int
	err := c.Get(context.Background(), "bad", &got)

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.False(t, mr.Exists("bad"))
}

func TestRedisCache_DeletePattern(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"quiz:result:a", "quiz:result:b", "quiz:test-code:X"} {
		require.NoError(t, c.Set(ctx, k, 1, time.Minute))
	}

	require.NoError(t, c.DeletePattern(ctx, "quiz:result:*"))

	assert.False(t, mr.Exists("quiz:result:a"))
	assert.False(t, mr.Exists("quiz:result:b"))
	assert.True(t, mr.Exists("quiz:test-code:X"))
}

func TestQuizCache_Result(t *testing.T) {
	_, c := newTestCache(t)
	qc := NewQuizCache(c, time.Minute)
	ctx := context.Background()

	_, err := qc.GetResult(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	result := &models.TestResult{ID: 7, TestSessionID: 3, CountCorrect: 2, CountSkipped: 1, Score: 2.5}
	require.NoError(t, qc.SetResult(ctx, "uuid-1", result))

	got, err := qc.GetResult(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.TestSessionID)
	assert.Equal(t, 2.5, got.Score)

	require.NoError(t, qc.DeleteResults(ctx, "uuid-1"))
	_, err = qc.GetResult(ctx, "uuid-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestQuizCache_TestCode(t *testing.T) {
	_, c := newTestCache(t)
	qc := NewQuizCache(c, 0)
	ctx := context.Background()

	require.NoError(t, qc.SetTestID(ctx, "AB12CD34", 42))
	id, err := qc.GetTestID(ctx, "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	require.NoError(t, qc.DeleteTestCode(ctx, "AB12CD34"))
	_, err = qc.GetTestID(ctx, "AB12CD34")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNoopCache(t *testing.T) {
	qc := NewQuizCache(NewNoopCache(), 0)
	ctx := context.Background()

	require.NoError(t, qc.SetResult(ctx, "u", &models.TestResult{}))
	_, err := qc.GetResult(ctx, "u")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
