package models

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID                  uuid.UUID   `json:"id"`
	StudentID           uuid.UUID   `json:"student_id"`
	CourseID            uuid.UUID   `json:"course_id"`
	CompletedContentIDs []uuid.UUID `json:"completed_content_ids"`
	Progress            int         `json:"progress"`
	EnrolledAt          time.Time   `json:"enrolled_at"`
}

// EnrollmentView is an enrollment joined with the summary of its course.
type EnrollmentView struct {
	Enrollment Enrollment    `json:"enrollment"`
	Course     CourseSummary `json:"course"`
}

func NewEnrollment(studentID, courseID uuid.UUID, at time.Time) Enrollment {
	return Enrollment{
		ID:                  uuid.New(),
		StudentID:           studentID,
		CourseID:            courseID,
		CompletedContentIDs: []uuid.UUID{},
		EnrolledAt:          at,
	}
}

func (e *Enrollment) HasCompleted(contentID uuid.UUID) bool {
	for _, id := range e.CompletedContentIDs {
		if id == contentID {
			return true
		}
	}
	return false
}

// Complete adds contentID to the completed set. It reports whether the set
// changed.
func (e *Enrollment) Complete(contentID uuid.UUID) bool {
	if e.HasCompleted(contentID) {
		return false
	}
	e.CompletedContentIDs = append(e.CompletedContentIDs, contentID)
	return true
}

// WithProgress returns a copy of e with Progress derived against course and
// completed ids in a stable order.
func (e Enrollment) WithProgress(course *Course) Enrollment {
	ids := make([]uuid.UUID, len(e.CompletedContentIDs))
	copy(ids, e.CompletedContentIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	e.CompletedContentIDs = ids
	e.Progress = Progress(e.CompletedContentIDs, course)
	return e
}

// Progress is the rounded percentage of the course's current content items
// found in completed. Ids of items no longer in the course do not count. A
// course without content has zero progress.
func Progress(completed []uuid.UUID, course *Course) int {
	if course == nil || len(course.Contents) == 0 {
		return 0
	}
	current := course.ContentIDs()
	seen := make(map[uuid.UUID]struct{}, len(completed))
	done := 0
	for _, id := range completed {
		if _, ok := current[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		done++
	}
	return int(math.Round(100 * float64(done) / float64(len(current))))
}
