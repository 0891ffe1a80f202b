package course

import (
	"context"
	"net/http"

	"LearnForge/internal/delivery/http/controllers/response"
	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContentService interface {
	AddContentItem(ctx context.Context, courseID uuid.UUID, t models.ContentType) (*models.Course, error)
	RemoveContentItem(ctx context.Context, courseID, itemID uuid.UUID) (*models.Course, error)
	SetContentField(ctx context.Context, courseID, itemID uuid.UUID, field models.ContentField, value string) (*models.Course, error)
	SetQuiz(ctx context.Context, courseID, itemID uuid.UUID, quiz models.Quiz) (*models.Course, error)
}

type ContentHandler struct {
	log     logger.Log
	service ContentService
}

func NewContentHandler(log logger.Log, s ContentService) *ContentHandler {
	return &ContentHandler{
		log:     log,
		service: s,
	}
}

type addContentRequest struct {
	Type string `json:"type"`
}

type setFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *ContentHandler) AddContent(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	var input addContentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := models.ParseContentType(input.Type)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}

	course, err := h.service.AddContentItem(c.Request.Context(), courseID, t)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ContentHandler) RemoveContent(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	contentID, ok := response.ParamUUID(c, "content_id")
	if !ok {
		return
	}

	course, err := h.service.RemoveContentItem(c.Request.Context(), courseID, contentID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ContentHandler) SetContentField(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	contentID, ok := response.ParamUUID(c, "content_id")
	if !ok {
		return
	}
	var input setFieldRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	field, err := models.ParseContentField(input.Field)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}

	course, err := h.service.SetContentField(c.Request.Context(), courseID, contentID, field, input.Value)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ContentHandler) SetQuiz(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	contentID, ok := response.ParamUUID(c, "content_id")
	if !ok {
		return
	}
	var quiz models.Quiz
	if err := c.ShouldBindJSON(&quiz); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	course, err := h.service.SetQuiz(c.Request.Context(), courseID, contentID, quiz)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
