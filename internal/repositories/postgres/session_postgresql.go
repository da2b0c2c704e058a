package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error {
	db := getDB(s.db, tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create test session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestSession, error) {
	db := getDB(s.db, tx)
	var session models.TestSession
	if err := db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) LockSharedByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestSession, error) {
	db := getDB(s.db, tx)
	var session models.TestSession
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByUUID(ctx context.Context, tx *gorm.DB, uuid string) (*models.TestSession, error) {
	db := getDB(s.db, tx)
	var session models.TestSession
	if err := db.WithContext(ctx).
		Preload("Test").
		Preload("Test.Questions", orderByID("questions")).
		Preload("Test.Questions.Options", orderByID("options")).
		Preload("Answers", orderByID("answers")).
		Preload("Answers.SelectedOptions").
		Where("uuid = ?", uuid).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) LockByUUID(ctx context.Context, tx *gorm.DB, uuid string) (*models.TestSession, error) {
	db := getDB(s.db, tx)
	var session models.TestSession
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uuid = ?", uuid).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) MarkFinished(ctx context.Context, tx *gorm.DB, id uint, endedAt time.Time) (bool, error) {
	db := getDB(s.db, tx)
	result := db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("id = ? AND status = ?", id, models.SessionInProgress).
		Updates(map[string]interface{}{
			"status":   models.SessionFinished,
			"ended_at": endedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to finish test session: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *SessionPostgreSQL) ListFinishedByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.TestSession, error) {
	db := getDB(s.db, tx)
	var sessions []*models.TestSession
	if err := db.WithContext(ctx).
		Preload("Test").
		Preload("Test.Questions").
		Preload("TestResult").
		Where("user_id = ? AND status = ?", userID, models.SessionFinished).
		Order("ended_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list finished sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) ListUUIDsByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]string, error) {
	db := getDB(s.db, tx)
	var uuids []string
	if err := db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("test_id = ?", testID).
		Pluck("uuid", &uuids).Error; err != nil {
		return nil, fmt.Errorf("failed to list session uuids: %w", err)
	}
	return uuids, nil
}
