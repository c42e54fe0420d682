package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

const (
	eventSource  = "scoring-service"
	eventVersion = "1.0"
)

// EventType represents the kinds of events the scoring service emits
type EventType string

const (
	EventScoringCompleted EventType = "scoring.completed"
	EventSessionSaved     EventType = "session.saved"
)

// ScoringEvent is the envelope shared by every event
type ScoringEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type ScoringCompletedEvent struct {
	ScaleID              string                `json:"scale_id"`
	UserID               string                `json:"user_id,omitempty"`
	DetectedFormat       models.ResponseFormat `json:"detected_format"`
	Confidence           float64               `json:"confidence"`
	Summary              models.ResultSummary  `json:"summary"`
	ParticipantsWithErrs int                   `json:"participants_with_errors"`
}

type SessionSavedEvent struct {
	SessionID      string               `json:"session_id"`
	UserID         string               `json:"user_id"`
	ScaleID        string               `json:"scale_id"`
	FileName       string               `json:"file_name"`
	Status         models.SessionStatus `json:"status"`
	TotalResponses int                  `json:"total_responses"`
	UploadedAt     time.Time            `json:"uploaded_at"`
}

// Event factory functions

func NewScoringCompletedEvent(scaleID, userID string, detection *models.FormatDetectionResult, summary *models.ResultSummary) *ScoringEvent {
	data := ScoringCompletedEvent{
		ScaleID: scaleID,
		UserID:  userID,
	}
	if detection != nil {
		data.DetectedFormat = detection.DetectedFormat
		data.Confidence = detection.Confidence
	}
	if summary != nil {
		data.Summary = *summary
		data.ParticipantsWithErrs = summary.ErrorCount
	}

	return newEvent(EventScoringCompleted, data)
}

func NewSessionSavedEvent(session *models.UploadSession) *ScoringEvent {
	return newEvent(EventSessionSaved, SessionSavedEvent{
		SessionID:      session.ID,
		UserID:         session.UserID,
		ScaleID:        session.SelectedScaleID,
		FileName:       session.FileName,
		Status:         session.Status,
		TotalResponses: session.TotalResponses,
		UploadedAt:     session.UploadedAt,
	})
}

func newEvent(eventType EventType, data interface{}) *ScoringEvent {
	return &ScoringEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// GenerateEventID returns a random UUID for an event
func GenerateEventID() string {
	return uuid.NewString()
}
