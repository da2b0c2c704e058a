package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

var testSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

// Create creates a test together with any questions and options attached to it
func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := getDB(t.db, tx)
	if err := db.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := getDB(t.db, tx)
	var test models.Test
	if err := db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := getDB(t.db, tx)
	var test models.Test
	if err := db.WithContext(ctx).
		Preload("Questions", orderByID("questions")).
		Preload("Questions.Options", orderByID("options")).
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

// GetPublishedByCode finds a published test by its join code
func (t *TestPostgreSQL) GetPublishedByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Test, error) {
	db := getDB(t.db, tx)
	var test models.Test
	if err := db.WithContext(ctx).
		Where("code = ? AND status = ?", code, models.TestStatusPublished).
		First(&test).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) ListByAuthor(ctx context.Context, tx *gorm.DB, authorID string, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	db := getDB(t.db, tx)
	var tests []*models.Test
	var total int64

	query := db.WithContext(ctx).Model(&models.Test{}).Where("author_id = ?", authorID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tests: %w", err)
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, testSortColumns)
	if err := query.Preload("Questions", orderByID("questions")).Find(&tests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}

	return tests, total, nil
}

// Update saves the test's own columns. Associations are left untouched.
func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := getDB(t.db, tx)
	if err := db.WithContext(ctx).Omit("Questions", "TestSessions").Save(test).Error; err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}
	return nil
}

func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(t.db, tx)
	result := db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete test: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TestPostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	db := getDB(t.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Test{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check test code: %w", err)
	}
	return count > 0, nil
}

// ===== STATISTICS =====

func (t *TestPostgreSQL) GetWithSessions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := getDB(t.db, tx)
	var test models.Test
	if err := t.preloadStatistics(db.WithContext(ctx)).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) ListWithSessionsByAuthor(ctx context.Context, tx *gorm.DB, authorID string) ([]*models.Test, error) {
	db := getDB(t.db, tx)
	var tests []*models.Test
	if err := t.preloadStatistics(db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&tests).Error; err != nil {
		return nil, fmt.Errorf("failed to list tests with sessions: %w", err)
	}
	return tests, nil
}

func (t *TestPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.TestStats, error) {
	db := getDB(t.db, tx)
	stats := repositories.TestStats{TestID: id}

	if err := db.WithContext(ctx).
		Model(&models.TestSession{}).
		Select("COUNT(*) AS total_sessions, COUNT(*) FILTER (WHERE status = ?) AS finished_sessions", models.SessionFinished).
		Where("test_id = ?", id).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	var scores struct {
		AverageScore float64
		BestScore    float64
	}
	if err := db.WithContext(ctx).
		Table("test_results").
		Select("COALESCE(AVG(test_results.score), 0) AS average_score, COALESCE(MAX(test_results.score), 0) AS best_score").
		Joins("JOIN test_sessions ON test_sessions.id = test_results.test_session_id").
		Where("test_sessions.test_id = ?", id).
		Scan(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %w", err)
	}
	stats.AverageScore = scores.AverageScore
	stats.BestScore = scores.BestScore

	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("COALESCE(SUM(score), 0)").
		Where("test_id = ?", id).
		Scan(&stats.MaxScore).Error; err != nil {
		return nil, fmt.Errorf("failed to sum question scores: %w", err)
	}

	return &stats, nil
}

func (t *TestPostgreSQL) preloadStatistics(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", orderByID("questions")).
		Preload("Questions.Options", orderByID("options")).
		Preload("TestSessions", orderByID("test_sessions")).
		Preload("TestSessions.Answers.SelectedOptions").
		Preload("TestSessions.TestResult")
}
