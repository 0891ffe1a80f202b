package http

import (
	"net/http"
	"time"

	"LearnForge/internal/delivery/http/controllers"
	"LearnForge/internal/delivery/http/controllers/course"
	"LearnForge/internal/delivery/http/controllers/enrollment"
	"LearnForge/internal/delivery/http/controllers/middleware"
	"LearnForge/internal/models"
	"LearnForge/internal/service"
	"LearnForge/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Options struct {
	AllowOrigins   []string
	RequestTimeout time.Duration
	Metrics        middleware.RequestObserver
	MetricsHandler http.Handler
	// TraceService enables otelgin spans under that service name.
	TraceService string
	Checks       map[string]controllers.Check
}

func InitRoutes(l logger.Log, u service.Collection, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	config := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	if opts.TraceService != "" {
		r.Use(otelgin.Middleware(opts.TraceService))
	}
	r.Use(middleware.Metrics(opts.Metrics))

	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	statusController := controllers.NewStatusHandler(opts.Checks)
	authProvider := middleware.NewAuthMiddlewareProvider(l, u.Auth)
	managementController := course.NewManagementHandler(l, u.Courses)
	queryController := course.NewQueryHandler(l, u.Catalog, u.Courses)
	contentController := course.NewContentHandler(l, u.Courses)
	assetController := course.NewAssetHandler(l, u.Courses)
	enrollmentController := enrollment.NewEnrollmentHandler(l, u.Enrollments)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		api := v1.Group("", middleware.Timeout(opts.RequestTimeout), authProvider.AuthMiddleware)

		courses := api.Group("/courses")
		{
			courses.GET("", queryController.ListCourses)
			courses.GET("/:course_id", queryController.CourseByID)

			admin := courses.Group("", middleware.RequireRoles(models.AdminRole))
			{
				admin.POST("", managementController.CreateCourse)
				admin.PATCH("/:course_id", managementController.UpdateCourse)
				admin.DELETE("/:course_id", managementController.DeleteCourse)

				admin.POST("/:course_id/contents", contentController.AddContent)
				admin.DELETE("/:course_id/contents/:content_id", contentController.RemoveContent)
				admin.PATCH("/:course_id/contents/:content_id", contentController.SetContentField)
				admin.PUT("/:course_id/contents/:content_id/quiz", contentController.SetQuiz)

				admin.POST("/:course_id/assets", assetController.UploadAsset)
				admin.POST("/:course_id/contents/:content_id/asset", assetController.UploadContentAsset)
				admin.PUT("/:course_id/thumbnail", assetController.UploadThumbnail)
			}

			student := courses.Group("", middleware.RequireRoles(models.StudentRole))
			{
				student.POST("/:course_id/enroll", enrollmentController.Enroll)
			}
		}

		enrollments := api.Group("/enrollments", middleware.RequireRoles(models.StudentRole))
		{
			enrollments.GET("", enrollmentController.ListEnrollments)
			enrollments.GET("/:enrollment_id", enrollmentController.GetEnrollment)
			enrollments.POST("/:enrollment_id/complete", enrollmentController.MarkComplete)
		}
	}
	return r
}
