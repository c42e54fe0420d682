package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was ready.
const statusClientClosedRequest = 499

type ScoringHandler struct {
	BaseHandler
	scoringService services.ScoringService
	exportService  *services.ExportService
	validator      *validator.Validator
}

type DetectFormatRequest struct {
	Records []models.FileUploadData `json:"records"`
	ScaleID string                  `json:"scale_id,omitempty"`
}

type DetectFormatResponse struct {
	Detection  *models.FormatDetectionResult `json:"detection"`
	Validation *models.ValidationResult      `json:"validation,omitempty"`
}

func NewScoringHandler(
	scoringService services.ScoringService,
	exportService *services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *ScoringHandler {
	return &ScoringHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
		exportService:  exportService,
		validator:      validator,
	}
}

// DetectFormat classifies the response encoding of a batch
// @Summary Detect response format
// @Description Counts numeric and text answers. When scale_id is given the batch is also checked against that scale.
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body DetectFormatRequest true "Records"
// @Success 200 {object} DetectFormatResponse
// @Failure 400 {object} ErrorResponse
// @Router /scoring/detect-format [post]
func (h *ScoringHandler) DetectFormat(c *gin.Context) {
	var req DetectFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Detecting response format", "records", len(req.Records), "scale_id", req.ScaleID)

	resp := DetectFormatResponse{
		Detection: h.scoringService.DetectFormat(req.Records),
	}
	if req.ScaleID != "" {
		resp.Validation = h.scoringService.ValidateResponses(req.Records, req.ScaleID)
	}

	c.JSON(http.StatusOK, resp)
}

// ValidateResponses checks a batch against a scale
// @Summary Validate responses
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body services.ScoreRequest true "Records and scale"
// @Success 200 {object} models.ValidationResult
// @Failure 400 {object} ErrorResponse
// @Router /scoring/validate [post]
func (h *ScoringHandler) ValidateResponses(c *gin.Context) {
	req, ok := h.bindScoreRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Validating responses", "records", len(req.Records), "scale_id", req.ScaleID)

	c.JSON(http.StatusOK, h.scoringService.ValidateResponses(req.Records, req.ScaleID))
}

// ProcessResponses scores a batch without saving it
// @Summary Score responses
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body services.ScoreRequest true "Records and scale"
// @Success 200 {object} services.BatchResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /scoring/process [post]
func (h *ScoringHandler) ProcessResponses(c *gin.Context) {
	req, ok := h.bindScoreRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Scoring responses", "records", len(req.Records), "scale_id", req.ScaleID)

	batch, err := h.scoringService.ScoreBatch(c.Request.Context(), req.Records, req.ScaleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ExportResults scores a batch and returns it as a download
// @Summary Score and export responses
// @Tags scoring
// @Accept json
// @Produce octet-stream
// @Param format query string false "csv, json or xlsx" default(csv)
// @Param request body services.ScoreRequest true "Records and scale"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /scoring/export [post]
func (h *ScoringHandler) ExportResults(c *gin.Context) {
	format, ok := bindExportFormat(c, h.validator)
	if !ok {
		return
	}
	req, ok := h.bindScoreRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting scored responses", "records", len(req.Records), "scale_id", req.ScaleID, "format", format)

	batch, err := h.scoringService.ScoreBatch(c.Request.Context(), req.Records, req.ScaleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	file, err := h.exportService.Export(format, batch.Scale, nil, batch.Results)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendFile(c, file)
}

func (h *ScoringHandler) bindScoreRequest(c *gin.Context) (*services.ScoreRequest, bool) {
	var req services.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, false
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err,
		})
		return nil, false
	}

	return &req, true
}

func (h *ScoringHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrScaleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Scale not found",
			Details: err.Error(),
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		h.LogWarn(c, "Request cancelled while scoring", "error", err)
		c.Status(statusClientClosedRequest)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// bindExportFormat reads ?format=, defaulting to csv.
func bindExportFormat(c *gin.Context, v *validator.Validator) (models.ExportFormat, bool) {
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return "", false
	}
	if err := v.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: err,
		})
		return "", false
	}
	if req.Format == "" {
		req.Format = models.ExportCSV
	}
	return req.Format, true
}

func sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
