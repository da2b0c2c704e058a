package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Create inserts the result. The unique index on test_session_id rejects a second result.
func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create test result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.TestResult, error) {
	db := getDB(r.db, tx)
	var result models.TestResult
	if err := db.WithContext(ctx).
		Preload("TestSession").
		Preload("TestSession.Test").
		Preload("TestSession.Test.Questions", orderByID("questions")).
		Preload("TestSession.Test.Questions.Options", orderByID("options")).
		Preload("TestSession.Answers", orderByID("answers")).
		Preload("TestSession.Answers.SelectedOptions").
		Where("test_session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
