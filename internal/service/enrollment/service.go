package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"
	"LearnForge/pkg/logger"

	"github.com/google/uuid"
	"github.com/juju/clock"
)

type enrollmentRepo interface {
	// Enroll stores e unless the pair already exists, and returns the stored
	// record together with whether it was created.
	Enroll(ctx context.Context, e models.Enrollment) (models.Enrollment, bool, error)
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
	EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	// AddCompletedContent adds contentID to the completed set in one atomic
	// step, provided the item still belongs to the enrollment's course.
	AddCompletedContent(ctx context.Context, enrollmentID, contentID uuid.UUID, at time.Time) (bool, error)
}

type courseReader interface {
	// Course may be served from a cache.
	Course(ctx context.Context, id uuid.UUID) (*models.Course, error)
	StoredCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type recorder interface {
	EnrollmentCreated()
	ContentCompleted()
}

type EnrollmentService struct {
	log     logger.Log
	clock   clock.Clock
	repo    enrollmentRepo
	courses courseReader
	metrics recorder
}

func NewEnrollmentService(log logger.Log, clk clock.Clock, repo enrollmentRepo, courses courseReader, metrics recorder) *EnrollmentService {
	if clk == nil {
		clk = clock.WallClock
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &EnrollmentService{
		log:     log,
		clock:   clk,
		repo:    repo,
		courses: courses,
		metrics: metrics,
	}
}

// EnrollStudent is idempotent: a second call for the same pair returns the
// existing enrollment with created set to false.
func (s *EnrollmentService) EnrollStudent(ctx context.Context, studentID, courseID uuid.UUID) (models.Enrollment, bool, error) {
	course, err := s.courses.Course(ctx, courseID)
	if err != nil {
		return models.Enrollment{}, false, err
	}
	// drafts are invisible to students
	if !course.Published {
		return models.Enrollment{}, false, app_errors.ErrCourseNotFound
	}

	stored, created, err := s.repo.Enroll(ctx, models.NewEnrollment(studentID, courseID, s.clock.Now().UTC()))
	if err != nil {
		return models.Enrollment{}, false, fmt.Errorf("enroll student: %w", err)
	}
	if created {
		s.metrics.EnrollmentCreated()
		s.log.Info("student enrolled", "student_id", studentID, "course_id", courseID, "enrollment_id", stored.ID)
	}
	return stored.WithProgress(course), created, nil
}

func (s *EnrollmentService) GetEnrollment(ctx context.Context, id uuid.UUID) (models.Enrollment, error) {
	e, err := s.repo.EnrollmentByID(ctx, id)
	if err != nil {
		return models.Enrollment{}, err
	}
	course, err := s.courses.Course(ctx, e.CourseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			return models.Enrollment{}, app_errors.ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return e.WithProgress(course), nil
}

// ListEnrollments joins each of the student's enrollments with its course
// summary. Enrollments whose course disappeared meanwhile are skipped.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]models.EnrollmentView, error) {
	enrollments, err := s.repo.EnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	views := make([]models.EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.courses.Course(ctx, e.CourseID)
		if err != nil {
			if errors.Is(err, app_errors.ErrCourseNotFound) {
				s.log.Warn("enrollment references missing course", "enrollment_id", e.ID, "course_id", e.CourseID)
				continue
			}
			return nil, err
		}
		views = append(views, models.EnrollmentView{
			Enrollment: e.WithProgress(course),
			Course:     course.Summary(),
		})
	}
	return views, nil
}

// MarkContentComplete records contentID as completed. Marking twice, or
// marking an id that is no longer part of the course, changes nothing.
func (s *EnrollmentService) MarkContentComplete(ctx context.Context, enrollmentID, contentID uuid.UUID) (models.Enrollment, error) {
	e, err := s.repo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	course, err := s.courses.Course(ctx, e.CourseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			return models.Enrollment{}, app_errors.ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	if !course.HasContent(contentID) {
		// the cached copy may predate the item; confirm against storage
		course, err = s.courses.StoredCourse(ctx, e.CourseID)
		if err != nil {
			if errors.Is(err, app_errors.ErrCourseNotFound) {
				return models.Enrollment{}, app_errors.ErrEnrollmentNotFound
			}
			return models.Enrollment{}, err
		}
	}
	if !course.HasContent(contentID) {
		s.log.Debug("ignoring completion of content outside course", "enrollment_id", enrollmentID, "content_id", contentID)
		return e.WithProgress(course), nil
	}

	added, err := s.repo.AddCompletedContent(ctx, enrollmentID, contentID, s.clock.Now().UTC())
	if err != nil {
		return models.Enrollment{}, fmt.Errorf("mark content complete: %w", err)
	}
	if added {
		s.metrics.ContentCompleted()
	}

	e, err = s.repo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	return e.WithProgress(course), nil
}

type nopRecorder struct{}

func (nopRecorder) EnrollmentCreated() {}
func (nopRecorder) ContentCompleted()  {}
