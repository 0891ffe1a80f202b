// Package memory is a process-local store used when no database is
// configured, and by tests. It enforces the same constraints as the
// Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"

	"github.com/google/uuid"
)

type pair struct {
	student uuid.UUID
	course  uuid.UUID
}

type Storage struct {
	mu          sync.RWMutex
	courses     map[uuid.UUID]*models.Course
	enrollments map[uuid.UUID]*models.Enrollment
	byPair      map[pair]uuid.UUID
}

func New() *Storage {
	return &Storage{
		courses:     make(map[uuid.UUID]*models.Course),
		enrollments: make(map[uuid.UUID]*models.Enrollment),
		byPair:      make(map[pair]uuid.UUID),
	}
}

func (s *Storage) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = cloneCourse(course)
	return nil
}

func (s *Storage) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

// UpdateCourse replaces the metadata of an existing course. Contents are
// owned by the content operations and are left alone.
func (s *Storage) UpdateCourse(ctx context.Context, course *models.Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.courses[course.ID]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	next := cloneCourse(course)
	next.Contents = cur.Contents
	next.CreatedAt = cur.CreatedAt
	s.courses[course.ID] = next
	return nil
}

// DeleteCourse removes the course and every enrollment that references it.
func (s *Storage) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		return app_errors.ErrCourseNotFound
	}
	delete(s.courses, id)
	for eid, e := range s.enrollments {
		if e.CourseID == id {
			delete(s.byPair, pair{student: e.StudentID, course: e.CourseID})
			delete(s.enrollments, eid)
		}
	}
	return nil
}

func (s *Storage) ListSummaries(ctx context.Context, includeDrafts bool) ([]models.CourseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CourseSummary, 0, len(s.courses))
	for _, c := range s.courses {
		if !includeDrafts && !c.Published {
			continue
		}
		out = append(out, c.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (s *Storage) AllSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	return s.ListSummaries(ctx, true)
}

func (s *Storage) SummariesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CourseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CourseSummary, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if c, ok := s.courses[id]; ok {
			out = append(out, c.Summary())
		}
	}
	sortSummaries(out)
	return out, nil
}

func (s *Storage) AddContent(ctx context.Context, courseID uuid.UUID, item *models.ContentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	stored := c.AppendContent(cloneItem(*item))
	*item = cloneItem(stored)
	return nil
}

func (s *Storage) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[item.CourseID]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	idx := c.ContentIndex(item.ID)
	if idx < 0 {
		return app_errors.ErrContentNotFound
	}
	next := cloneItem(*item)
	next.Order = c.Contents[idx].Order
	next.CreatedAt = c.Contents[idx].CreatedAt
	c.Contents[idx] = next
	return nil
}

func (s *Storage) DeleteContentAndUpdateOrder(ctx context.Context, courseID, itemID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	_, err := c.RemoveContent(itemID)
	return err
}

func (s *Storage) Enroll(ctx context.Context, e models.Enrollment) (models.Enrollment, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Enrollment{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[e.CourseID]; !ok {
		return models.Enrollment{}, false, app_errors.ErrCourseNotFound
	}
	key := pair{student: e.StudentID, course: e.CourseID}
	if id, ok := s.byPair[key]; ok {
		return cloneEnrollment(s.enrollments[id]), false, nil
	}
	stored := cloneEnrollment(&e)
	s.enrollments[e.ID] = &stored
	s.byPair[key] = e.ID
	return cloneEnrollment(&stored), true, nil
}

func (s *Storage) EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[id]
	if !ok {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	out := cloneEnrollment(e)
	return &out, nil
}

func (s *Storage) EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Enrollment, 0)
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			out = append(out, cloneEnrollment(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.Before(out[j].EnrolledAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// AddCompletedContent keeps only the completion set; the timestamp is not
// retained in memory.
func (s *Storage) AddCompletedContent(ctx context.Context, enrollmentID, contentID uuid.UUID, _ time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return false, app_errors.ErrEnrollmentNotFound
	}
	c, ok := s.courses[e.CourseID]
	if !ok || !c.HasContent(contentID) {
		return false, nil
	}
	return e.Complete(contentID), nil
}

func sortSummaries(out []models.CourseSummary) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
}

func cloneCourse(c *models.Course) *models.Course {
	out := *c
	out.Contents = make([]models.ContentItem, len(c.Contents))
	for i, item := range c.Contents {
		out.Contents[i] = cloneItem(item)
	}
	return &out
}

func cloneItem(item models.ContentItem) models.ContentItem {
	if item.Quiz != nil {
		q := models.Quiz{Questions: make([]models.Question, len(item.Quiz.Questions))}
		for i, question := range item.Quiz.Questions {
			question.Options = append([]string(nil), question.Options...)
			q.Questions[i] = question
		}
		item.Quiz = &q
	}
	return item
}

func cloneEnrollment(e *models.Enrollment) models.Enrollment {
	out := *e
	out.CompletedContentIDs = append(make([]uuid.UUID, 0, len(e.CompletedContentIDs)), e.CompletedContentIDs...)
	return out
}
