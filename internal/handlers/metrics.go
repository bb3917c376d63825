package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type MetricsHandler struct {
	log            *logger.Logger
	metricsService services.MetricsService
}

func NewMetricsHandler(log *logger.Logger, metricsService services.MetricsService) *MetricsHandler {
	return &MetricsHandler{
		log:            log.With("handler", "MetricsHandler"),
		metricsService: metricsService,
	}
}

func (h *MetricsHandler) Dashboard(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	dashboard, err := h.metricsService.Dashboard(c.Request.Context(), projectID, c.Query("engine"))
	if err != nil {
		h.log.Error("Dashboard projection failed", "error", err, "project_id", projectID)
		RespondAppError(c, err)
		return
	}
	RespondOK(c, dashboard)
}
