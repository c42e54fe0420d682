package postgres

import (
	"context"

	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db      *gorm.DB
	session repositories.SessionRepository
	result  repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:      db,
		session: NewSessionPostgreSQL(db),
		result:  NewResultPostgreSQL(db),
	}
}

func (r *Repository) Session() repositories.SessionRepository {
	return r.session
}

func (r *Repository) Result() repositories.ResultRepository {
	return r.result
}

// WithTransaction runs fn in a transaction that is rolled back when fn
// returns an error or panics.
func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
