package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db        *gorm.DB
	tests     repositories.TestRepository
	questions repositories.QuestionRepository
	sessions  repositories.SessionRepository
	answers   repositories.AnswerRepository
	results   repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:        db,
		tests:     NewTestPostgreSQL(db),
		questions: NewQuestionPostgreSQL(db),
		sessions:  NewSessionPostgreSQL(db),
		answers:   NewAnswerPostgreSQL(db),
		results:   NewResultPostgreSQL(db),
	}
}

func (r *Repository) Tests() repositories.TestRepository         { return r.tests }
func (r *Repository) Questions() repositories.QuestionRepository { return r.questions }
func (r *Repository) Sessions() repositories.SessionRepository   { return r.sessions }
func (r *Repository) Answers() repositories.AnswerRepository     { return r.answers }
func (r *Repository) Results() repositories.ResultRepository     { return r.results }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// getDB picks the transaction when one is given
func getDB(base, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return base
}

// applyPaginationAndSort applies limit, offset and a whitelisted sort column
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func orderByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}
