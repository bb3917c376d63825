package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		log:            log.With("handler", "ProjectHandler"),
		projectService: projectService,
	}
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, total, err := h.projectService.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": projects, "total": total})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	project, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, project)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var in services.CreateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), in)
	if err != nil {
		h.log.Error("Create project failed", "error", err)
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var in services.UpdateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	project, err := h.projectService.Update(c.Request.Context(), id, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
