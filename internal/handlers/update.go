package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type UpdateHandler struct {
	log           *logger.Logger
	updateService services.UpdateService
}

func NewUpdateHandler(log *logger.Logger, updateService services.UpdateService) *UpdateHandler {
	return &UpdateHandler{
		log:           log.With("handler", "UpdateHandler"),
		updateService: updateService,
	}
}

// Check implements the Tauri updater protocol: 200 with the update payload
// when a newer build exists for the client's platform, 204 otherwise.
func (h *UpdateHandler) Check(c *gin.Context) {
	target := c.Query("target")
	arch := c.Query("arch")
	current := c.Query("version")
	if target == "" || arch == "" || current == "" {
		RespondError(c, http.StatusBadRequest, "missing_params", nil)
		return
	}
	locale := c.DefaultQuery("locale", "en")

	resp, err := h.updateService.CheckUpdate(c.Request.Context(), current, target, arch, locale, false)
	if err != nil {
		h.log.Error("Update check failed", "error", err, "target", target, "arch", arch)
		RespondAppError(c, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	RespondOK(c, resp)
}

func (h *UpdateHandler) Latest(c *gin.Context) {
	info, err := h.updateService.LatestInfo(c.Request.Context(), false)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	if info == nil {
		RespondOK(c, gin.H{"version": nil, "message": "No release available"})
		return
	}
	RespondOK(c, info)
}

func (h *UpdateHandler) Changelog(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	locale := c.DefaultQuery("locale", "en")
	changelog, err := h.updateService.GetChangelog(c.Request.Context(), limit, locale)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, changelog)
}

func (h *UpdateHandler) ValidateBetaKey(c *gin.Context) {
	var body struct {
		BetaKey string `json:"beta_key"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	if h.updateService.ValidateBetaKey(body.BetaKey) {
		RespondOK(c, gin.H{"valid": true, "message": "Beta access granted", "channel": "beta"})
		return
	}
	RespondOK(c, gin.H{"valid": false, "message": "Invalid beta key", "channel": "stable"})
}

// BetaCheck mirrors Check but includes prerelease versions; it requires a
// valid beta key on every call.
func (h *UpdateHandler) BetaCheck(c *gin.Context) {
	if !h.updateService.ValidateBetaKey(c.Query("beta_key")) {
		RespondError(c, http.StatusUnauthorized, "invalid_beta_key", nil)
		return
	}
	target := c.Query("target")
	arch := c.Query("arch")
	current := c.Query("version")
	if target == "" || arch == "" || current == "" {
		RespondError(c, http.StatusBadRequest, "missing_params", nil)
		return
	}
	locale := c.DefaultQuery("locale", "en")

	resp, err := h.updateService.CheckUpdate(c.Request.Context(), current, target, arch, locale, true)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	RespondOK(c, resp)
}

func (h *UpdateHandler) BetaLatest(c *gin.Context) {
	if !h.updateService.ValidateBetaKey(c.Query("beta_key")) {
		RespondError(c, http.StatusUnauthorized, "invalid_beta_key", nil)
		return
	}
	info, err := h.updateService.LatestInfo(c.Request.Context(), true)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	if info == nil {
		RespondOK(c, gin.H{"version": nil, "message": "No release available"})
		return
	}
	info.Channel = "beta"
	RespondOK(c, info)
}
