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

type ManagementService interface {
	CreateCourse(ctx context.Context, in models.CourseInput, contents []models.ContentItem) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     l,
		service: s,
	}
}

type contentRequest struct {
	Type  string       `json:"type"`
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Quiz  *models.Quiz `json:"quiz"`
}

type newCourseRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    models.Category   `json:"category"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Instructor  string            `json:"instructor"`
	Thumbnail   string            `json:"thumbnail"`
	Published   bool              `json:"published"`
	Pricing     *models.Pricing   `json:"pricing"`
	Contents    []contentRequest  `json:"contents"`
}

type updateCourseRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Category    *models.Category   `json:"category"`
	Difficulty  *models.Difficulty `json:"difficulty"`
	Instructor  *string            `json:"instructor"`
	Thumbnail   *string            `json:"thumbnail"`
	Published   *bool              `json:"published"`
	Pricing     *models.Pricing    `json:"pricing"`
}

func (h *ManagementHandler) CreateCourse(c *gin.Context) {
	var input newCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contents := make([]models.ContentItem, 0, len(input.Contents))
	for _, req := range input.Contents {
		t, err := models.ParseContentType(req.Type)
		if err != nil {
			response.Fail(c, h.log, err)
			return
		}
		item := models.NewContentItem(t)
		item.Title = req.Title
		item.URL = req.URL
		if req.Quiz != nil {
			item.Quiz = req.Quiz
		}
		contents = append(contents, item)
	}

	course, err := h.service.CreateCourse(c.Request.Context(), models.CourseInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Difficulty:  input.Difficulty,
		Instructor:  input.Instructor,
		Thumbnail:   input.Thumbnail,
		Published:   input.Published,
		Pricing:     input.Pricing,
	}, contents)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ManagementHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	var input updateCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), courseID, models.CoursePatch{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Difficulty:  input.Difficulty,
		Instructor:  input.Instructor,
		Thumbnail:   input.Thumbnail,
		Published:   input.Published,
		Pricing:     input.Pricing,
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), courseID); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
