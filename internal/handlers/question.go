package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
)

type QuestionHandler struct {
	log             *logger.Logger
	questionService services.QuestionService
}

func NewQuestionHandler(log *logger.Logger, questionService services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:             log.With("handler", "QuestionHandler"),
		questionService: questionService,
	}
}

func (h *QuestionHandler) List(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	questions, total, err := h.questionService.List(c.Request.Context(), projectID, benchmarkID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": questions, "total": total})
}

func (h *QuestionHandler) Create(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	var in services.CreateQuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	question, err := h.questionService.Create(c.Request.Context(), projectID, benchmarkID, in)
	if err != nil {
		h.log.Error("Create question failed", "error", err, "benchmark_id", benchmarkID)
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) Update(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "questionId")
	if !ok {
		return
	}
	var in services.UpdateQuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	question, err := h.questionService.Update(c.Request.Context(), projectID, benchmarkID, id, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, question)
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "questionId")
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), projectID, benchmarkID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *QuestionHandler) SetApproved(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "questionId")
	if !ok {
		return
	}
	var body struct {
		Approved bool `json:"approved"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	question, err := h.questionService.SetApproved(c.Request.Context(), projectID, benchmarkID, id, body.Approved)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, question)
}

func (h *QuestionHandler) SetRelevance(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	benchmarkID, ok := pathUUID(c, "benchmarkId")
	if !ok {
		return
	}
	id, ok := pathUUID(c, "questionId")
	if !ok {
		return
	}
	var body struct {
		Relevant bool `json:"relevant"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	question, err := h.questionService.SetRelevance(c.Request.Context(), projectID, benchmarkID, id, body.Relevant)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, question)
}
