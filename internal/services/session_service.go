package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/scoring-service/internal/cache"
	"github.com/SAP-F-2025/scoring-service/internal/events"
	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
)

const defaultSessionPageSize = 50

type sessionService struct {
	repo      repositories.Repository
	scoring   ScoringService
	exporter  *ExportService
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator
	cacheTTL  time.Duration
	now       func() time.Time
}

// SessionServiceConfig collects the collaborators of the session service.
// Cache may be nil, in which case every read goes to the repository.
type SessionServiceConfig struct {
	Repo      repositories.Repository
	Scoring   ScoringService
	Exporter  *ExportService
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Logger    *ServiceLogger
	Validator *validator.Validator
	CacheTTL  time.Duration
}

func NewSessionService(cfg SessionServiceConfig) SessionService {
	return &sessionService{
		repo:      cfg.Repo,
		scoring:   cfg.Scoring,
		exporter:  cfg.Exporter,
		cache:     cfg.Cache,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		validator: cfg.Validator,
		cacheTTL:  cfg.CacheTTL,
		now:       time.Now,
	}
}

// ===== CORE OPERATIONS =====

// ScoreAndSave scores an upload and stores the session with all of its
// results in one transaction.
func (s *sessionService) ScoreAndSave(ctx context.Context, req *CreateSessionRequest, userID string) (resp *SessionResponse, err error) {
	op := s.logger.WithOperation(ctx, "score_and_save", userID)
	defer func() {
		resourceID := ""
		if resp != nil {
			resourceID = resp.Session.ID
		}
		op.LogResult(resourceID, "upload_session", err)
	}()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Records) == 0 {
		return nil, ErrEmptyBatch
	}

	start := s.now()
	batch, err := s.scoring.ScoreBatch(ctx, req.Records, req.ScaleID)
	if err != nil {
		return nil, err
	}
	s.logger.LogScoringRun(ctx, req.ScaleID, batch.Detection, batch.Results, s.now().Sub(start))

	detection, err := json.Marshal(batch.Detection)
	if err != nil {
		return nil, fmt.Errorf("failed to encode format detection: %w", err)
	}

	session := &models.UploadSession{
		ID:              uuid.NewString(),
		UserID:          userID,
		FileName:        req.FileName,
		UploadedAt:      s.now().UTC(),
		SelectedScaleID: req.ScaleID,
		Status:          models.SessionProcessing,
		TotalResponses:  len(req.Records),
		DetectedFormat:  batch.Detection.DetectedFormat,
		Confidence:      batch.Detection.Confidence,
		Detection:       detection,
	}

	rows := make([]*models.ScoringResult, len(batch.Results))
	saved := make([]*models.ProcessedResult, len(batch.Results))
	for i, result := range batch.Results {
		row, err := models.NewScoringResult(session.ID, i, result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result %s: %w", result.ID, err)
		}
		rows[i] = row

		// The engine's results are left untouched.
		withSession := *result
		withSession.SessionID = session.ID
		saved[i] = &withSession
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Session().Create(ctx, tx, session); err != nil {
			return err
		}
		if err := s.repo.Result().CreateBatch(ctx, tx, rows); err != nil {
			return err
		}
		return s.repo.Session().UpdateStatus(ctx, tx, session.ID, models.SessionCompleted, len(rows))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save upload session: %w", err)
	}
	session.Status = models.SessionCompleted
	session.ProcessedResponses = len(rows)

	resp = &SessionResponse{
		Session: session,
		Results: saved,
		Summary: batch.Summary,
	}

	s.invalidateUserSessions(ctx, userID)
	s.cacheSession(ctx, resp)

	s.publish(ctx, events.NewScoringCompletedEvent(req.ScaleID, userID, batch.Detection, batch.Summary))
	s.publish(ctx, events.NewSessionSavedEvent(session))

	return resp, nil
}

// List returns the user's sessions, newest upload first by default.
func (s *sessionService) List(ctx context.Context, userID string, filters repositories.SessionFilters) (*SessionListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultSessionPageSize
	}

	key := sessionListKey(userID, filters)
	var cached SessionListResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	sessions, total, err := s.repo.Session().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*models.UploadSession{}
	}

	resp := &SessionListResponse{
		Sessions: sessions,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// Get returns a session with its results. Sessions of other users are
// reported as access denied, not as missing.
func (s *sessionService) Get(ctx context.Context, id string, userID string) (*SessionResponse, error) {
	var cached SessionResponse
	if s.cacheGet(ctx, cache.SessionKey(id), &cached) && cached.Session != nil {
		if cached.Session.UserID != userID {
			return nil, ErrSessionAccessDenied
		}
		return &cached, nil
	}

	session, err := s.repo.Session().GetByIDWithResults(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if session.UserID != userID {
		s.logger.LogBusinessRuleViolation(ctx, "get_session", userID, NewBusinessRuleError(
			"session_owner", "session belongs to another user", map[string]interface{}{"session_id": id},
		))
		return nil, ErrSessionAccessDenied
	}

	results := make([]*models.ProcessedResult, 0, len(session.Results))
	for i := range session.Results {
		result, err := session.Results[i].ToProcessedResult()
		if err != nil {
			return nil, fmt.Errorf("failed to decode result %s: %w", session.Results[i].ResultKey, err)
		}
		results = append(results, result)
	}
	session.Results = nil

	resp := &SessionResponse{
		Session: session,
		Results: results,
		Summary: Summarize(results),
	}
	s.cacheSession(ctx, resp)
	return resp, nil
}

// Export renders a stored session in the requested format.
func (s *sessionService) Export(ctx context.Context, id string, userID string, format models.ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = models.ExportCSV
	}

	resp, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	scale, ok := s.scoring.GetScale(resp.Session.SelectedScaleID)
	if !ok {
		return nil, scaleNotFound(resp.Session.SelectedScaleID)
	}

	return s.exporter.Export(format, *scale, resp.Session, resp.Results)
}

// Delete removes a session and, through the foreign key cascade, its
// results. Only the owner may delete.
func (s *sessionService) Delete(ctx context.Context, id string, userID string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_session", userID)
	defer func() {
		op.LogResult(id, "upload_session", err)
	}()

	session, err := s.repo.Session().GetByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if session.UserID != userID {
		return ErrSessionAccessDenied
	}

	if err := s.repo.Session().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.cacheDelete(ctx, cache.SessionKey(id))
	s.invalidateUserSessions(ctx, userID)
	return nil
}

// ===== HELPERS =====

func (s *sessionService) publish(ctx context.Context, event *events.ScoringEvent) {
	if s.publisher == nil {
		return
	}
	// Delivery is best effort; the session is already stored.
	if err := s.publisher.PublishScoringEvent(ctx, event); err != nil {
		s.logger.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func (s *sessionService) cacheSession(ctx context.Context, resp *SessionResponse) {
	s.cacheSet(ctx, cache.SessionKey(resp.Session.ID), resp)
}

func (s *sessionService) invalidateUserSessions(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.UserSessionsPattern(userID)); err != nil {
		s.logger.logger.WarnContext(ctx, "Failed to invalidate session list cache", "user_id", userID, "error", err)
	}
}

func (s *sessionService) cacheDelete(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.logger.WarnContext(ctx, "Cache delete failed", "key", key, "error", err)
	}
}

func (s *sessionService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	}
	return err == nil
}

func (s *sessionService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func sessionListKey(userID string, filters repositories.SessionFilters) string {
	status, scaleID := "", ""
	if filters.Status != nil {
		status = string(*filters.Status)
	}
	if filters.ScaleID != nil {
		scaleID = *filters.ScaleID
	}
	from, to := "", ""
	if filters.DateFrom != nil {
		from = filters.DateFrom.UTC().Format(time.RFC3339)
	}
	if filters.DateTo != nil {
		to = filters.DateTo.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%d:%d:%s:%s",
		cache.UserSessionsKey(userID), status, scaleID, from, to,
		filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)
}
