package services

import (
	"context"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// ScoringService is the scoring core: registry reads, format detection and
// batch scoring. It does no I/O.
type ScoringService interface {
	GetAvailableScales() []models.Scale
	GetScale(id string) (*models.Scale, bool)
	DetectFormat(records []models.FileUploadData) *models.FormatDetectionResult
	ValidateResponses(records []models.FileUploadData, scaleID string) *models.ValidationResult
	ProcessResponses(ctx context.Context, records []models.FileUploadData, scaleID string) ([]*models.ProcessedResult, error)
	ScoreBatch(ctx context.Context, records []models.FileUploadData, scaleID string) (*BatchResult, error)
}

// SessionService scores uploads and keeps them per user.
type SessionService interface {
	ScoreAndSave(ctx context.Context, req *CreateSessionRequest, userID string) (*SessionResponse, error)
	List(ctx context.Context, userID string, filters repositories.SessionFilters) (*SessionListResponse, error)
	Get(ctx context.Context, id string, userID string) (*SessionResponse, error)
	Export(ctx context.Context, id string, userID string, format models.ExportFormat) (*ExportFile, error)
	Delete(ctx context.Context, id string, userID string) error
}

// ServiceManager hands out the services to the HTTP layer
type ServiceManager interface {
	Scoring() ScoringService
	Session() SessionService
	Export() *ExportService
}

// ===== REQUEST/RESPONSE TYPES =====

type ScoreRequest struct {
	ScaleID string                  `json:"scale_id" validate:"required,max=100"`
	Records []models.FileUploadData `json:"records" validate:"required"`
}

type CreateSessionRequest struct {
	FileName string                  `json:"file_name" validate:"required,max=255"`
	ScaleID  string                  `json:"scale_id" validate:"required,max=100"`
	Records  []models.FileUploadData `json:"records" validate:"required"`
}

type SessionResponse struct {
	Session *models.UploadSession     `json:"session"`
	Results []*models.ProcessedResult `json:"results"`
	Summary *models.ResultSummary     `json:"summary"`
}

type SessionListResponse struct {
	Sessions []*models.UploadSession `json:"sessions"`
	Total    int64                   `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}

// ===== SERVICE MANAGER =====

type serviceManager struct {
	scoring ScoringService
	session SessionService
	export  *ExportService
}

func NewServiceManager(scoring ScoringService, session SessionService, export *ExportService) ServiceManager {
	return &serviceManager{
		scoring: scoring,
		session: session,
		export:  export,
	}
}

func (m *serviceManager) Scoring() ScoringService { return m.scoring }
func (m *serviceManager) Session() SessionService { return m.session }
func (m *serviceManager) Export() *ExportService  { return m.export }
