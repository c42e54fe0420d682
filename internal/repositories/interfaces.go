package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	Status    *models.SessionStatus `json:"status"`
	ScaleID   *string               `json:"scale_id"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "uploaded_at", "file_name", "total_responses"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// SessionRepository stores upload sessions. Lookups return (nil, nil) when
// no row matches.
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.UploadSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.UploadSession, error)
	GetByIDWithResults(ctx context.Context, tx *gorm.DB, id string) (*models.UploadSession, error) // Results ordered by position
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters SessionFilters) ([]*models.UploadSession, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.SessionStatus, processed int) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error // results go with it (ON DELETE CASCADE)
}

// ResultRepository stores the per-participant rows of a session.
type ResultRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, results []*models.ScoringResult) error
}

// Repository groups the repositories and runs them inside one transaction.
type Repository interface {
	Session() SessionRepository
	Result() ResultRepository
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
