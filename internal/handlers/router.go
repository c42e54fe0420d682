package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	scaleHandler   *ScaleHandler
	scoringHandler *ScoringHandler
	sessionHandler *SessionHandler
}

// NewHandlerManager builds the handlers. Session routes are only mounted
// when the service manager carries a session service (a database is configured).
func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	hm := &HandlerManager{
		scaleHandler:   NewScaleHandler(serviceManager.Scoring(), logger),
		scoringHandler: NewScoringHandler(serviceManager.Scoring(), serviceManager.Export(), validator, logger),
	}
	if serviceManager.Session() != nil {
		hm.sessionHandler = NewSessionHandler(serviceManager.Session(), validator, logger)
	}
	return hm
}

// SetupRoutes sets up all API routes. auth guards the session routes; the
// stateless scoring routes are open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scales := v1.Group("/scales")
		{
			scales.GET("", hm.scaleHandler.ListScales)
			scales.GET("/:id", hm.scaleHandler.GetScale)
		}

		scoring := v1.Group("/scoring")
		{
			scoring.POST("/detect-format", hm.scoringHandler.DetectFormat)
			scoring.POST("/validate", hm.scoringHandler.ValidateResponses)
			scoring.POST("/process", hm.scoringHandler.ProcessResponses)
			scoring.POST("/export", hm.scoringHandler.ExportResults)
		}

		if hm.sessionHandler == nil {
			return
		}

		sessions := v1.Group("/sessions")
		if auth != nil {
			sessions.Use(auth)
		}
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.GET("/:id/export", hm.sessionHandler.ExportSession)
			sessions.DELETE("/:id", hm.sessionHandler.DeleteSession)
		}
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "scoring-service",
	})
}
