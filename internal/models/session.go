package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionUploading  SessionStatus = "uploading"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionError      SessionStatus = "error"
)

// UploadSession is one scored upload, persisted with all of its results.
type UploadSession struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"` // UUID
	UserID string `json:"user_id" gorm:"not null;index;size:255"`

	// File info
	FileName   string    `json:"file_name" gorm:"not null;size:255"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"not null;index"`

	// Scoring info
	SelectedScaleID    string         `json:"selected_scale_id" gorm:"not null;size:100;index"`
	Status             SessionStatus  `json:"status" gorm:"default:uploading;index"`
	TotalResponses     int            `json:"total_responses"`
	ProcessedResponses int            `json:"processed_responses"`
	DetectedFormat     ResponseFormat `json:"detected_format" gorm:"size:20"`
	Confidence         float64        `json:"confidence"`

	// Detection details
	Detection datatypes.JSON `json:"detection" gorm:"type:jsonb"` // FormatDetectionResult

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Results []ScoringResult `json:"results,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// ScoringResult is the stored form of a ProcessedResult.
type ScoringResult struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	SessionID     string `json:"session_id" gorm:"not null;index;size:36"`
	ResultKey     string `json:"id" gorm:"not null;size:50"` // result-{n}
	Position      int    `json:"-" gorm:"not null"`
	ParticipantID string `json:"participant_id" gorm:"not null;size:255"`

	TotalScore     float64 `json:"total_score"`
	Interpretation string  `json:"interpretation" gorm:"type:text"`
	Severity       string  `json:"severity" gorm:"size:100"`

	Responses        datatypes.JSON `json:"responses" gorm:"type:json"`          // ResponseSet, json keeps key order
	Scores           datatypes.JSON `json:"scores" gorm:"type:jsonb"`            // map[int]float64
	ProcessingErrors datatypes.JSON `json:"processing_errors" gorm:"type:jsonb"` // []string

	CreatedAt time.Time `json:"created_at"`
}

// NewScoringResult flattens a ProcessedResult into its stored form.
func NewScoringResult(sessionID string, position int, r *ProcessedResult) (*ScoringResult, error) {
	responses, err := json.Marshal(r.Responses)
	if err != nil {
		return nil, err
	}
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return nil, err
	}
	errs := r.ProcessingErrors
	if errs == nil {
		errs = []string{}
	}
	processingErrors, err := json.Marshal(errs)
	if err != nil {
		return nil, err
	}

	return &ScoringResult{
		SessionID:        sessionID,
		ResultKey:        r.ID,
		Position:         position,
		ParticipantID:    r.ParticipantID,
		TotalScore:       r.TotalScore,
		Interpretation:   r.Interpretation,
		Severity:         r.Severity,
		Responses:        datatypes.JSON(responses),
		Scores:           datatypes.JSON(scores),
		ProcessingErrors: datatypes.JSON(processingErrors),
	}, nil
}

// ToProcessedResult restores the in-memory result from its stored form.
func (s *ScoringResult) ToProcessedResult() (*ProcessedResult, error) {
	result := &ProcessedResult{
		ID:               s.ResultKey,
		SessionID:        s.SessionID,
		ParticipantID:    s.ParticipantID,
		TotalScore:       s.TotalScore,
		Interpretation:   s.Interpretation,
		Severity:         s.Severity,
		Scores:           map[int]float64{},
		ProcessingErrors: []string{},
	}

	if len(s.Responses) > 0 {
		if err := json.Unmarshal(s.Responses, &result.Responses); err != nil {
			return nil, err
		}
	}
	if len(s.Scores) > 0 {
		if err := json.Unmarshal(s.Scores, &result.Scores); err != nil {
			return nil, err
		}
	}
	if len(s.ProcessingErrors) > 0 {
		if err := json.Unmarshal(s.ProcessingErrors, &result.ProcessingErrors); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportRequest struct {
	Format ExportFormat `form:"format" json:"format" validate:"omitempty,oneof=xlsx csv json"`
}
