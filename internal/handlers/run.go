package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type RunHandler struct {
	log               *logger.Logger
	runService        services.RunService
	competitorService services.CompetitorService
}

func NewRunHandler(log *logger.Logger, runService services.RunService, competitorService services.CompetitorService) *RunHandler {
	return &RunHandler{
		log:               log.With("handler", "RunHandler"),
		runService:        runService,
		competitorService: competitorService,
	}
}

func (h *RunHandler) List(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID := queryUUID(c, "benchmark_id")
	runs, total, err := h.runService.List(c.Request.Context(), projectID, benchmarkID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": runs, "total": total})
}

func (h *RunHandler) Get(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "runId")
	if !ok {
		return
	}
	run, err := h.runService.Get(c.Request.Context(), projectID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, run)
}

// Start is the "run benchmark now" endpoint; the scheduler fires runs through
// the same service path.
func (h *RunHandler) Start(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var in services.StartRunInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	run, err := h.runService.Start(c.Request.Context(), projectID, in)
	if err != nil {
		h.log.Error("Start run failed", "error", err, "project_id", projectID, "benchmark_id", in.BenchmarkID)
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (h *RunHandler) Results(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	runID, ok := pathUUID(c, "runId")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	results, total, err := h.runService.Results(c.Request.Context(), projectID, runID, limit, offset)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": results, "total": total})
}

func (h *RunHandler) Delete(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "runId")
	if !ok {
		return
	}
	if err := h.runService.Delete(c.Request.Context(), projectID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *RunHandler) GenerateCompetitorAnalysis(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	runID, ok := pathUUID(c, "runId")
	if !ok {
		return
	}
	resultID, ok := pathUUID(c, "resultId")
	if !ok {
		return
	}
	analysis, err := h.competitorService.Generate(c.Request.Context(), projectID, runID, resultID)
	if err != nil {
		h.log.Error("Competitor analysis failed", "error", err, "result_id", resultID)
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"analysis": analysis})
}

func (h *RunHandler) GetCompetitorAnalysis(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	runID, ok := pathUUID(c, "runId")
	if !ok {
		return
	}
	resultID, ok := pathUUID(c, "resultId")
	if !ok {
		return
	}
	analysis, err := h.competitorService.Get(c.Request.Context(), projectID, runID, resultID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"analysis": analysis})
}

// queryUUID returns uuid.Nil when the param is absent or malformed; callers
// treat that as "no filter".
func queryUUID(c *gin.Context, name string) uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func queryInt(c *gin.Context, name string, defaultVal int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
