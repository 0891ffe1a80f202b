package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"

	"github.com/google/uuid"
)

// newTestStorage connects to TEST_POSTGRES_DSN, skipping when it is unset.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := NewFromDSN(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

func seedCourse(t *testing.T, courses *CoursePostgres, types ...models.ContentType) *models.Course {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.NewCourse(models.CourseInput{
		Title:      "Postgres " + uuid.NewString()[:8],
		Category:   models.CategoryDesign,
		Difficulty: models.DifficultyBeginner,
		Published:  true,
	})
	c.ID = uuid.New()
	c.CreatedAt, c.UpdatedAt = now, now
	for _, typ := range types {
		item := models.NewContentItem(typ)
		item.Title = string(typ)
		item.CreatedAt, item.UpdatedAt = now, now
		c.AppendContent(item)
	}
	if err := courses.CreateCourse(context.Background(), &c); err != nil {
		t.Fatalf("create course: %v", err)
	}
	t.Cleanup(func() { _ = courses.DeleteCourse(context.Background(), c.ID) })
	return &c
}

func TestContentOrderStaysDense(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()
	courses := NewCoursePostgres(st.Pool)
	contents := NewContentPostgres(st.Pool)

	c := seedCourse(t, courses, models.ContentTypeVideo, models.ContentTypePDF, models.ContentTypeQuiz)

	extra := models.NewContentItem(models.ContentTypeVideo)
	if err := contents.AddContent(ctx, c.ID, &extra); err != nil {
		t.Fatalf("add: %v", err)
	}
	if extra.Order != 3 {
		t.Fatalf("expected appended order 3, got %d", extra.Order)
	}

	if err := contents.DeleteContentAndUpdateOrder(ctx, c.ID, c.Contents[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, err := contents.ContentsByCourse(ctx, c.ID)
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	want := []uuid.UUID{c.Contents[0].ID, c.Contents[2].ID, extra.ID}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if item.ID != want[i] || item.Order != i {
			t.Fatalf("item %d: got %s@%d want %s@%d", i, item.ID, item.Order, want[i], i)
		}
	}
	if items[1].Quiz == nil {
		t.Fatalf("quiz payload lost")
	}

	if err := contents.DeleteContentAndUpdateOrder(ctx, c.ID, uuid.New()); !errors.Is(err, app_errors.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestEnrollmentIsUniqueAndCascades(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()
	courses := NewCoursePostgres(st.Pool)
	enrollments := NewEnrollmentPostgres(st.Pool)

	c := seedCourse(t, courses, models.ContentTypeVideo, models.ContentTypePDF)
	student := uuid.New()
	now := time.Now().UTC()

	first, created, err := enrollments.Enroll(ctx, models.NewEnrollment(student, c.ID, now))
	if err != nil || !created {
		t.Fatalf("enroll: created=%v err=%v", created, err)
	}
	again, created, err := enrollments.Enroll(ctx, models.NewEnrollment(student, c.ID, now))
	if err != nil || created || again.ID != first.ID {
		t.Fatalf("re-enroll: created=%v id=%s err=%v", created, again.ID, err)
	}

	completedAt := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	added, err := enrollments.AddCompletedContent(ctx, first.ID, c.Contents[0].ID, completedAt)
	if err != nil || !added {
		t.Fatalf("complete: added=%v err=%v", added, err)
	}
	added, err = enrollments.AddCompletedContent(ctx, first.ID, c.Contents[0].ID, completedAt.Add(time.Hour))
	if err != nil || added {
		t.Fatalf("repeat complete: added=%v err=%v", added, err)
	}
	var storedAt time.Time
	err = st.Pool.QueryRow(ctx,
		`SELECT completed_at FROM enrollment_completions WHERE enrollment_id = $1 AND content_id = $2`,
		first.ID, c.Contents[0].ID,
	).Scan(&storedAt)
	if err != nil || !storedAt.Equal(completedAt) {
		t.Fatalf("completed_at: got %v want %v (%v)", storedAt, completedAt, err)
	}
	if added, err := enrollments.AddCompletedContent(ctx, first.ID, uuid.New(), completedAt); err != nil || added {
		t.Fatalf("foreign content: added=%v err=%v", added, err)
	}
	stored, err := enrollments.EnrollmentByID(ctx, first.ID)
	if err != nil || len(stored.CompletedContentIDs) != 1 {
		t.Fatalf("stored enrollment: %+v %v", stored, err)
	}

	if _, _, err := enrollments.Enroll(ctx, models.NewEnrollment(student, uuid.New(), now)); !errors.Is(err, app_errors.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}

	if err := courses.DeleteCourse(ctx, c.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}
	if _, err := enrollments.EnrollmentByID(ctx, first.ID); !errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}
