package service

import (
	"LearnForge/internal/service/auth"
	"LearnForge/internal/service/catalog"
	"LearnForge/internal/service/course"
	"LearnForge/internal/service/enrollment"
)

type Collection struct {
	Auth        *auth.JWTManager
	Courses     *course.CourseService
	Catalog     *catalog.CatalogService
	Enrollments *enrollment.EnrollmentService
}
