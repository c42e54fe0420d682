package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sessionSortColumns = map[string]string{
	"uploaded_at":     "uploaded_at",
	"file_name":       "file_name",
	"total_responses": "total_responses",
	"created_at":      "created_at",
}

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

// Create inserts the session row only; results are stored separately.
func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.UploadSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create upload session: %w", err)
	}
	return nil
}

// GetByID retrieves a session without its results
func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.UploadSession, error) {
	db := s.getDB(tx)
	var session models.UploadSession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get upload session: %w", err)
	}
	return &session, nil
}

// GetByIDWithResults retrieves a session with its results in upload order
func (s *SessionPostgreSQL) GetByIDWithResults(ctx context.Context, tx *gorm.DB, id string) (*models.UploadSession, error) {
	db := s.getDB(tx)
	var session models.UploadSession
	err := db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get upload session: %w", err)
	}
	return &session, nil
}

// ListByUser retrieves a user's sessions, newest upload first unless the
// filters say otherwise
func (s *SessionPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.SessionFilters) ([]*models.UploadSession, int64, error) {
	query := s.getDB(tx).WithContext(ctx).
		Model(&models.UploadSession{}).
		Where("user_id = ?", userID)

	query = s.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count upload sessions: %w", err)
	}

	query = s.applyPaginationAndSort(query, filters)

	var sessions []*models.UploadSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list upload sessions: %w", err)
	}

	return sessions, total, nil
}

func (s *SessionPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.SessionStatus, processed int) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.UploadSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              status,
			"processed_responses": processed,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a session; results go with it through the cascade
func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Where("id = ?", id).Delete(&models.UploadSession{}).Error
}

// Helper methods

func (s *SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ScaleID != nil {
		query = query.Where("selected_scale_id = ?", *filters.ScaleID)
	}
	if filters.DateFrom != nil {
		query = query.Where("uploaded_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("uploaded_at <= ?", *filters.DateTo)
	}
	return query
}

func (s *SessionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	column, ok := sessionSortColumns[filters.SortBy]
	if !ok {
		column = "uploaded_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
