package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type OptimizationHandler struct {
	log                 *logger.Logger
	optimizationService services.OptimizationService
}

func NewOptimizationHandler(log *logger.Logger, optimizationService services.OptimizationService) *OptimizationHandler {
	return &OptimizationHandler{
		log:                 log.With("handler", "OptimizationHandler"),
		optimizationService: optimizationService,
	}
}

func (h *OptimizationHandler) List(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	journeys, err := h.optimizationService.List(c.Request.Context(), projectID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": journeys, "total": len(journeys)})
}

func (h *OptimizationHandler) GetByJourney(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	journey := types.Intent(c.Param("journey"))
	result, err := h.optimizationService.GetByJourney(c.Request.Context(), projectID, journey)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, result)
}
