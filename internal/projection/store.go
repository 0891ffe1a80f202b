// Package projection keeps a client-side copy of the course listing and the
// caller's enrollments. Every mutation made through the Store is followed by
// a refetch of what it affected; local state is never patched by hand.
package projection

import (
	"context"
	"fmt"
	"sync"

	"LearnForge/internal/client"
	"LearnForge/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Collection string

const (
	Courses     Collection = "courses"
	Enrollments Collection = "enrollments"
)

type api interface {
	ListCourses(ctx context.Context, q client.CourseQuery) ([]models.CourseSummary, error)
	Enrollments(ctx context.Context) ([]models.EnrollmentView, error)
	Enroll(ctx context.Context, courseID uuid.UUID) (models.Enrollment, bool, error)
	MarkComplete(ctx context.Context, enrollmentID, contentID uuid.UUID) (models.Enrollment, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	AddContent(ctx context.Context, courseID uuid.UUID, t models.ContentType) (*models.Course, error)
	RemoveContent(ctx context.Context, courseID, itemID uuid.UUID) (*models.Course, error)
}

// MyCourse is an enrolled course together with the caller's progress in it.
type MyCourse struct {
	Course       models.CourseSummary
	EnrollmentID uuid.UUID
	Progress     int
}

type Partition struct {
	MyCourses []MyCourse
	Explore   []models.CourseSummary
}

type Store struct {
	api api

	// refreshMu serializes refetches so an older answer never overwrites a
	// newer one.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	query       client.CourseQuery
	courses     []models.CourseSummary
	enrollments []models.EnrollmentView
	hooks       []func(Collection)
}

func NewStore(api api) *Store {
	return &Store{api: api}
}

// OnInvalidate registers fn to run after each refetch of a collection.
func (s *Store) OnInvalidate(fn func(Collection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// SetQuery changes the listing filter and refetches the course listing.
func (s *Store) SetQuery(ctx context.Context, q client.CourseQuery) error {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	return s.Invalidate(ctx, Courses)
}

// Refresh refetches both collections.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Invalidate(ctx, Courses, Enrollments)
}

// Invalidate refetches the named collections concurrently. On error nothing
// is replaced.
func (s *Store) Invalidate(ctx context.Context, collections ...Collection) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	for _, col := range collections {
		if col != Courses && col != Enrollments {
			return fmt.Errorf("unknown collection %q", col)
		}
	}

	s.mu.RLock()
	query := s.query
	s.mu.RUnlock()

	var (
		courses     []models.CourseSummary
		enrollments []models.EnrollmentView
		wantCourses bool
		wantEnrolls bool
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, col := range collections {
		switch col {
		case Courses:
			if wantCourses {
				continue
			}
			wantCourses = true
			g.Go(func() error {
				out, err := s.api.ListCourses(gctx, query)
				if err != nil {
					return fmt.Errorf("refetch courses: %w", err)
				}
				courses = out
				return nil
			})
		case Enrollments:
			if wantEnrolls {
				continue
			}
			wantEnrolls = true
			g.Go(func() error {
				out, err := s.api.Enrollments(gctx)
				if err != nil {
					return fmt.Errorf("refetch enrollments: %w", err)
				}
				enrollments = out
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	var refreshed []Collection
	if wantCourses {
		s.courses = courses
		refreshed = append(refreshed, Courses)
	}
	if wantEnrolls {
		s.enrollments = enrollments
		refreshed = append(refreshed, Enrollments)
	}
	hooks := make([]func(Collection), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, col := range refreshed {
		for _, fn := range hooks {
			fn(col)
		}
	}
	return nil
}

func (s *Store) Courses() []models.CourseSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CourseSummary(nil), s.courses...)
}

func (s *Store) Enrollments() []models.EnrollmentView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EnrollmentView(nil), s.enrollments...)
}

// Partition splits the course listing into enrolled and not enrolled courses,
// both in listing order.
func (s *Store) Partition() Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCourse := make(map[uuid.UUID]models.Enrollment, len(s.enrollments))
	for _, v := range s.enrollments {
		byCourse[v.Enrollment.CourseID] = v.Enrollment
	}

	var p Partition
	for _, c := range s.courses {
		if e, ok := byCourse[c.ID]; ok {
			p.MyCourses = append(p.MyCourses, MyCourse{Course: c, EnrollmentID: e.ID, Progress: e.Progress})
			continue
		}
		p.Explore = append(p.Explore, c)
	}
	return p
}

// ProgressFor reports the caller's progress in a course and whether they are
// enrolled in it.
func (s *Store) ProgressFor(courseID uuid.UUID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.enrollments {
		if v.Enrollment.CourseID == courseID {
			return v.Enrollment.Progress, true
		}
	}
	return 0, false
}

func (s *Store) Enroll(ctx context.Context, courseID uuid.UUID) (models.Enrollment, error) {
	e, _, err := s.api.Enroll(ctx, courseID)
	if err != nil {
		return models.Enrollment{}, err
	}
	return e, s.Invalidate(ctx, Enrollments)
}

func (s *Store) MarkComplete(ctx context.Context, enrollmentID, contentID uuid.UUID) (models.Enrollment, error) {
	e, err := s.api.MarkComplete(ctx, enrollmentID, contentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	return e, s.Invalidate(ctx, Enrollments)
}

func (s *Store) UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*models.Course, error) {
	c, err := s.api.UpdateCourse(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return c, s.Invalidate(ctx, Courses)
}

func (s *Store) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteCourse(ctx, id); err != nil {
		return err
	}
	return s.Invalidate(ctx, Courses)
}

func (s *Store) AddContent(ctx context.Context, courseID uuid.UUID, t models.ContentType) (*models.Course, error) {
	c, err := s.api.AddContent(ctx, courseID, t)
	if err != nil {
		return nil, err
	}
	return c, s.Invalidate(ctx, Courses)
}

func (s *Store) RemoveContent(ctx context.Context, courseID, itemID uuid.UUID) (*models.Course, error) {
	c, err := s.api.RemoveContent(ctx, courseID, itemID)
	if err != nil {
		return nil, err
	}
	return c, s.Invalidate(ctx, Courses)
}
