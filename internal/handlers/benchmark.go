package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
	"github.com/GEO-SCOPE/geoscope-backend/internal/sse"
)

type BenchmarkHandler struct {
	log               *logger.Logger
	benchmarkService  services.BenchmarkService
	generationService services.GenerationService
	versionStore      services.VersionStoreService
}

func NewBenchmarkHandler(
	log *logger.Logger,
	benchmarkService services.BenchmarkService,
	generationService services.GenerationService,
	versionStore services.VersionStoreService,
) *BenchmarkHandler {
	return &BenchmarkHandler{
		log:               log.With("handler", "BenchmarkHandler"),
		benchmarkService:  benchmarkService,
		generationService: generationService,
		versionStore:      versionStore,
	}
}

func (h *BenchmarkHandler) List(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarks, total, err := h.benchmarkService.List(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error("List benchmarks failed", "error", err, "project_id", projectID)
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": benchmarks, "total": total})
}

func (h *BenchmarkHandler) Get(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	benchmark, err := h.benchmarkService.Get(c.Request.Context(), projectID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, benchmark)
}

func (h *BenchmarkHandler) Create(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var in services.CreateBenchmarkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	benchmark, err := h.benchmarkService.Create(c.Request.Context(), projectID, in)
	if err != nil {
		h.log.Error("Create benchmark failed", "error", err, "project_id", projectID)
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, benchmark)
}

// Generate streams the AI generation progress as named SSE events over the
// request's own response body. The stream ends with generation_complete, or
// with a single error event if any stage fails.
func (h *BenchmarkHandler) Generate(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req services.GenerateBenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	emit := func(event sse.Event, data any) {
		sse.WriteEvent(c.Writer, event, data)
		c.Writer.Flush()
	}
	if _, err := h.generationService.Generate(c.Request.Context(), projectID, req, emit); err != nil {
		h.log.Error("Benchmark generation failed", "error", err, "project_id", projectID)
		emit(sse.EventError, gin.H{"message": err.Error()})
	}
}

func (h *BenchmarkHandler) Update(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	var in services.UpdateBenchmarkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	benchmark, err := h.benchmarkService.Update(c.Request.Context(), projectID, id, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, benchmark)
}

func (h *BenchmarkHandler) Delete(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	if err := h.benchmarkService.Delete(c.Request.Context(), projectID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *BenchmarkHandler) Activate(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	benchmark, err := h.benchmarkService.Activate(c.Request.Context(), projectID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, benchmark)
}

func (h *BenchmarkHandler) Archive(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	benchmark, err := h.benchmarkService.Archive(c.Request.Context(), projectID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, benchmark)
}

func (h *BenchmarkHandler) ListVersions(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	versions, err := h.versionStore.List(c.Request.Context(), projectID, benchmarkID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": versions, "total": len(versions)})
}

func (h *BenchmarkHandler) GetVersion(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	versionID, ok := pathUUID(c, "versionId")
	if !ok {
		return
	}
	v, err := h.versionStore.Get(c.Request.Context(), projectID, benchmarkID, versionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, v)
}

func (h *BenchmarkHandler) RestoreVersion(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	versionID, ok := pathUUID(c, "versionId")
	if !ok {
		return
	}
	restored, err := h.versionStore.Restore(c.Request.Context(), projectID, benchmarkID, versionID)
	if err != nil {
		h.log.Error("Restore version failed", "error", err, "benchmark_id", benchmarkID, "version_id", versionID)
		RespondAppError(c, err)
		return
	}
	RespondOK(c, restored)
}

func (h *BenchmarkHandler) QuickRestoreCandidate(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	candidate, err := h.versionStore.QuickRestoreCandidate(c.Request.Context(), projectID, benchmarkID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, candidate)
}

// pathUUID parses a uuid path param, responding 400 itself on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}
