package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type ScheduleHandler struct {
	log             *logger.Logger
	scheduleService services.ScheduleService
}

func NewScheduleHandler(log *logger.Logger, scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		log:             log.With("handler", "ScheduleHandler"),
		scheduleService: scheduleService,
	}
}

func (h *ScheduleHandler) List(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	tasks, total, err := h.scheduleService.List(c.Request.Context(), projectID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": tasks, "total": total})
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}
	task, err := h.scheduleService.Get(c.Request.Context(), projectID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, task)
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var in services.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	task, err := h.scheduleService.Create(c.Request.Context(), projectID, in)
	if err != nil {
		h.log.Error("Create scheduled task failed", "error", err, "project_id", projectID)
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}
	var in services.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	task, err := h.scheduleService.Update(c.Request.Context(), projectID, id, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, task)
}

func (h *ScheduleHandler) Toggle(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}
	task, err := h.scheduleService.Toggle(c.Request.Context(), projectID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, task)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}
	if err := h.scheduleService.Delete(c.Request.Context(), projectID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
