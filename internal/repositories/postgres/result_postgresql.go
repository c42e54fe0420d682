package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

const resultBatchSize = 200

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, results []*models.ScoringResult) error {
	if len(results) == 0 {
		return nil
	}
	db := r.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(results, resultBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create scoring results: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
