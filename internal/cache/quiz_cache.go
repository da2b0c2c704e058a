package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

const (
	resultKeyPrefix   = "quiz:result:"
	testCodeKeyPrefix = "quiz:test-code:"

	DefaultResultTTL   = 30 * time.Minute
	DefaultTestCodeTTL = 10 * time.Minute
)

// QuizCache stores finished results by session uuid and test ids by join code.
type QuizCache interface {
	SetResult(ctx context.Context, sessionUUID string, result *models.TestResult) error
	GetResult(ctx context.Context, sessionUUID string) (*models.TestResult, error)
	DeleteResults(ctx context.Context, sessionUUIDs ...string) error

	SetTestID(ctx context.Context, code string, testID uint) error
	GetTestID(ctx context.Context, code string) (uint, error)
	DeleteTestCode(ctx context.Context, code string) error
}

type quizCache struct {
	cache       CacheService
	resultTTL   time.Duration
	testCodeTTL time.Duration
}

func NewQuizCache(cache CacheService, resultTTL time.Duration) QuizCache {
	if resultTTL <= 0 {
		resultTTL = DefaultResultTTL
	}
	return &quizCache{
		cache:       cache,
		resultTTL:   resultTTL,
		testCodeTTL: DefaultTestCodeTTL,
	}
}

func (c *quizCache) SetResult(ctx context.Context, sessionUUID string, result *models.TestResult) error {
	return c.cache.Set(ctx, resultKeyPrefix+sessionUUID, result, c.resultTTL)
}

func (c *quizCache) GetResult(ctx context.Context, sessionUUID string) (*models.TestResult, error) {
	var result models.TestResult
	if err := c.cache.Get(ctx, resultKeyPrefix+sessionUUID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *quizCache) DeleteResults(ctx context.Context, sessionUUIDs ...string) error {
	for _, id := range sessionUUIDs {
		if err := c.cache.Delete(ctx, resultKeyPrefix+id); err != nil {
			return err
		}
	}
	return nil
}

func (c *quizCache) SetTestID(ctx context.Context, code string, testID uint) error {
	return c.cache.Set(ctx, testCodeKeyPrefix+code, testID, c.testCodeTTL)
}

func (c *quizCache) GetTestID(ctx context.Context, code string) (uint, error) {
	var id uint
	if err := c.cache.Get(ctx, testCodeKeyPrefix+code, &id); err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid cached test id for code %s: %w", code, ErrCacheMiss)
	}
	return id, nil
}

func (c *quizCache) DeleteTestCode(ctx context.Context, code string) error {
	return c.cache.Delete(ctx, testCodeKeyPrefix+code)
}
