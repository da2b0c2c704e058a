package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert runs as ON CONFLICT (test_session_id, question_id) so concurrent submits
// for the same question converge on one row.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer, selected []models.Option) error {
	db := getDB(a.db, tx).WithContext(ctx)

	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
	}).Create(answer).Error; err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	assoc := db.Model(answer).Omit("SelectedOptions.*").Association("SelectedOptions")
	if len(selected) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("failed to clear selected options: %w", err)
		}
	} else if err := assoc.Replace(selected); err != nil {
		return fmt.Errorf("failed to replace selected options: %w", err)
	}

	answer.SelectedOptions = selected
	return nil
}

func (a *AnswerPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error) {
	db := getDB(a.db, tx)
	var answers []*models.Answer
	if err := db.WithContext(ctx).
		Preload("SelectedOptions").
		Where("test_session_id = ?", sessionID).
		Order("id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score float64, status models.AnswerStatus) error {
	db := getDB(a.db, tx)
	if err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":  score,
			"status": status,
		}).Error; err != nil {
		return fmt.Errorf("failed to update answer score: %w", err)
	}
	return nil
}
