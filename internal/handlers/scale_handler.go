package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ScaleHandler struct {
	BaseHandler
	scoringService services.ScoringService
}

func NewScaleHandler(scoringService services.ScoringService, logger utils.Logger) *ScaleHandler {
	return &ScaleHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
	}
}

// ListScales returns every scale in the registry
// @Summary List scales
// @Tags scales
// @Produce json
// @Success 200 {array} models.Scale
// @Router /scales [get]
func (h *ScaleHandler) ListScales(c *gin.Context) {
	c.JSON(http.StatusOK, h.scoringService.GetAvailableScales())
}

// GetScale returns one scale
// @Summary Get scale
// @Tags scales
// @Produce json
// @Param id path string true "Scale ID"
// @Success 200 {object} models.Scale
// @Failure 404 {object} ErrorResponse
// @Router /scales/{id} [get]
func (h *ScaleHandler) GetScale(c *gin.Context) {
	scaleID := ParseStringIDParam(c, "id")
	if scaleID == "" {
		return
	}

	scale, ok := h.scoringService.GetScale(scaleID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Scale not found",
			Details: scaleID,
		})
		return
	}

	c.JSON(http.StatusOK, scale)
}
