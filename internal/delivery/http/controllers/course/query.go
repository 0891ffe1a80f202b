package course

import (
	"context"
	"net/http"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/delivery/http/controllers/middleware"
	"LearnForge/internal/delivery/http/controllers/response"
	"LearnForge/internal/models"
	"LearnForge/internal/service/catalog"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogService interface {
	ListCourses(ctx context.Context, f catalog.Filter) ([]models.CourseSummary, error)
}

type CourseReader interface {
	Course(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type QueryHandler struct {
	log     logger.Log
	catalog CatalogService
	courses CourseReader
}

func NewQueryHandler(log logger.Log, catalog CatalogService, courses CourseReader) *QueryHandler {
	return &QueryHandler{
		log:     log,
		catalog: catalog,
		courses: courses,
	}
}

// ListCourses serves both the student catalog and the admin management view;
// only admins see drafts.
func (h *QueryHandler) ListCourses(c *gin.Context) {
	filter, err := catalog.ParseFilter(
		c.Query("search"),
		c.Query("category"),
		c.Query("difficulty"),
		c.Query("sort_by"),
	)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	principal, _ := middleware.Principal(c)
	filter.IncludeDrafts = principal.IsAdmin()

	courses, err := h.catalog.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *QueryHandler) CourseByID(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "course_id")
	if !ok {
		return
	}

	course, err := h.courses.Course(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	if principal, _ := middleware.Principal(c); !course.Published && !principal.IsAdmin() {
		response.Fail(c, h.log, app_errors.ErrCourseNotFound)
		return
	}

	c.JSON(http.StatusOK, course)
}
