package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *validator.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// CreateSession scores an upload and saves it
// @Summary Score and save upload
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body services.CreateSessionRequest true "Upload"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating upload session", "file_name", req.FileName, "scale_id", req.ScaleID, "records", len(req.Records))

	resp, err := h.sessionService.ScoreAndSave(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListSessions lists the caller's sessions, newest first
// @Summary List upload sessions
// @Tags sessions
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param status query string false "Status"
// @Param scale_id query string false "Scale ID"
// @Success 200 {object} services.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filters := h.parseSessionFilters(c)

	resp, err := h.sessionService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSession returns a session with its results
// @Summary Get upload session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.sessionService.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportSession downloads a saved session
// @Summary Export upload session
// @Tags sessions
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv, json or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) ExportSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	format, ok := bindExportFormat(c, h.validator)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting upload session", "session_id", sessionID, "format", format)

	file, err := h.sessionService.Export(c.Request.Context(), sessionID, userID, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendFile(c, file)
}

// DeleteSession removes a saved session and its results
// @Summary Delete upload session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting upload session", "session_id", sessionID)

	if err := h.sessionService.Delete(c.Request.Context(), sessionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) parseSessionFilters(c *gin.Context) repositories.SessionFilters {
	filters := repositories.SessionFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset >= 0 {
		filters.Offset = offset
	}
	if status := c.Query("status"); status != "" {
		s := models.SessionStatus(status)
		filters.Status = &s
	}
	if scaleID := c.Query("scale_id"); scaleID != "" {
		filters.ScaleID = &scaleID
	}

	return filters
}

func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
		})
	case errors.Is(err, services.ErrScaleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Scale not found",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrSessionAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
