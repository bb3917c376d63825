package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type BugReportHandler struct {
	log        *logger.Logger
	bugService services.BugReportService
}

func NewBugReportHandler(log *logger.Logger, bugService services.BugReportService) *BugReportHandler {
	return &BugReportHandler{
		log:        log.With("handler", "BugReportHandler"),
		bugService: bugService,
	}
}

// Submit accepts a report from the desktop app without auth. Client metadata
// comes off the request, not the payload.
func (h *BugReportHandler) Submit(c *gin.Context) {
	var in services.SubmitBugReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	in.UserAgent = c.Request.UserAgent()
	if len(in.UserAgent) > 500 {
		in.UserAgent = in.UserAgent[:500]
	}
	in.IPAddress = c.ClientIP()

	report, err := h.bugService.Submit(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":                report.ID,
		"screenshots_count": len(report.Screenshots),
	})
}

func (h *BugReportHandler) List(c *gin.Context) {
	in := services.ListBugReportsInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	}
	reports, total, err := h.bugService.List(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": reports, "total": total})
}

func (h *BugReportHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "bugId")
	if !ok {
		return
	}
	report, err := h.bugService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, report)
}
