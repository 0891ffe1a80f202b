package enrollment

import (
	"context"
	"errors"
	"net/http"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/delivery/http/controllers/middleware"
	"LearnForge/internal/delivery/http/controllers/response"
	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnrollmentService interface {
	EnrollStudent(ctx context.Context, studentID, courseID uuid.UUID) (models.Enrollment, bool, error)
	ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]models.EnrollmentView, error)
	GetEnrollment(ctx context.Context, id uuid.UUID) (models.Enrollment, error)
	MarkContentComplete(ctx context.Context, enrollmentID, contentID uuid.UUID) (models.Enrollment, error)
}

type EnrollmentHandler struct {
	log     logger.Log
	service EnrollmentService
}

func NewEnrollmentHandler(log logger.Log, s EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:     log,
		service: s,
	}
}

type completeRequest struct {
	ContentID uuid.UUID `json:"content_id"`
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}
	student, ok := middleware.Principal(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("user not authenticated"))
		return
	}

	e, created, err := h.service.EnrollStudent(c.Request.Context(), student.UserID, courseID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, e)
}

func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	student, ok := middleware.Principal(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("user not authenticated"))
		return
	}

	views, err := h.service.ListEnrollments(c.Request.Context(), student.UserID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": views})
}

func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	e, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EnrollmentHandler) MarkComplete(c *gin.Context) {
	e, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}
	var input completeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if input.ContentID == uuid.Nil {
		response.Fail(c, h.log, app_errors.Invalid("content_id", "is required"))
		return
	}

	updated, err := h.service.MarkContentComplete(c.Request.Context(), e.ID, input.ContentID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ownedEnrollment loads the enrollment named in the path and checks that it
// belongs to the caller.
func (h *EnrollmentHandler) ownedEnrollment(c *gin.Context) (models.Enrollment, bool) {
	enrollmentID, ok := response.ParamUUID(c, "enrollment_id")
	if !ok {
		return models.Enrollment{}, false
	}
	student, ok := middleware.Principal(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("user not authenticated"))
		return models.Enrollment{}, false
	}

	e, err := h.service.GetEnrollment(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Fail(c, h.log, err)
		return models.Enrollment{}, false
	}
	if e.StudentID != student.UserID {
		response.Fail(c, h.log, app_errors.ErrForbidden)
		return models.Enrollment{}, false
	}
	return e, true
}
