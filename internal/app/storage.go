package app

import (
	"context"
	"fmt"
	"time"

	"LearnForge/internal/config"
	"LearnForge/internal/delivery/http/controllers"
	"LearnForge/internal/models"
	"LearnForge/internal/storage/memory"
	"LearnForge/internal/storage/postgres"
	"LearnForge/pkg/logger"

	"github.com/google/uuid"
)

type courseStore interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	ListSummaries(ctx context.Context, includeDrafts bool) ([]models.CourseSummary, error)
	SummariesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CourseSummary, error)
	AllSummaries(ctx context.Context) ([]models.CourseSummary, error)
}

type contentStore interface {
	AddContent(ctx context.Context, courseID uuid.UUID, item *models.ContentItem) error
	UpdateContent(ctx context.Context, item *models.ContentItem) error
	DeleteContentAndUpdateOrder(ctx context.Context, courseID, itemID uuid.UUID) error
}

type enrollmentStore interface {
	Enroll(ctx context.Context, e models.Enrollment) (models.Enrollment, bool, error)
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
	EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	AddCompletedContent(ctx context.Context, enrollmentID, contentID uuid.UUID, at time.Time) (bool, error)
}

type stores struct {
	courses     courseStore
	contents    contentStore
	enrollments enrollmentStore
	// check is nil for the in-memory driver.
	check controllers.Check
	close func()
}

func openStores(ctx context.Context, log logger.Log, cfg *config.Config) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory, "":
		st := memory.New()
		log.Info("using in-memory storage")
		return &stores{
			courses:     st,
			contents:    st,
			enrollments: st,
			close:       func() {},
		}, nil

	case config.StoragePostgres:
		pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		log.Info("using postgres storage", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
		return &stores{
			courses:     postgres.NewCoursePostgres(pg.Pool),
			contents:    postgres.NewContentPostgres(pg.Pool),
			enrollments: postgres.NewEnrollmentPostgres(pg.Pool),
			check:       func(ctx context.Context) error { return pg.Pool.Ping(ctx) },
			close:       pg.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
