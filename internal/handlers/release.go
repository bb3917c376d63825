package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type ReleaseHandler struct {
	log            *logger.Logger
	releaseService services.ReleaseService
}

func NewReleaseHandler(log *logger.Logger, releaseService services.ReleaseService) *ReleaseHandler {
	return &ReleaseHandler{
		log:            log.With("handler", "ReleaseHandler"),
		releaseService: releaseService,
	}
}

func (h *ReleaseHandler) List(c *gin.Context) {
	releases, total, err := h.releaseService.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	services.SortReleasesDesc(releases)
	RespondOK(c, gin.H{"items": releases, "total": total})
}

func (h *ReleaseHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "releaseId")
	if !ok {
		return
	}
	release, err := h.releaseService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, release)
}

func (h *ReleaseHandler) Create(c *gin.Context) {
	var in services.CreateReleaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	release, err := h.releaseService.Create(c.Request.Context(), in)
	if err != nil {
		h.log.Error("Create release failed", "error", err, "version", in.Version)
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, release)
}

func (h *ReleaseHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "releaseId")
	if !ok {
		return
	}
	var in services.UpdateReleaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	release, err := h.releaseService.Update(c.Request.Context(), id, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, release)
}

func (h *ReleaseHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "releaseId")
	if !ok {
		return
	}
	if err := h.releaseService.Delete(c.Request.Context(), id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// RecordDownload bumps the release's download counter; the desktop client
// calls it after a successful artifact fetch.
func (h *ReleaseHandler) RecordDownload(c *gin.Context) {
	id, ok := pathUUID(c, "releaseId")
	if !ok {
		return
	}
	if err := h.releaseService.RecordDownload(c.Request.Context(), id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"recorded": true})
}
