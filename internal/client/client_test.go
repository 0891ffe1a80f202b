package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/client"
	delivery "LearnForge/internal/delivery/http"
	"LearnForge/internal/models"
	"LearnForge/internal/service"
	"LearnForge/internal/service/auth"
	"LearnForge/internal/service/catalog"
	"LearnForge/internal/service/course"
	"LearnForge/internal/service/enrollment"
	"LearnForge/internal/storage/memory"
	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

func newServer(t *testing.T) (*httptest.Server, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	st := memory.New()
	courses := course.NewCourseService(log, st, st)
	jwt := auth.NewJWTManager("client-test", "learnforge")
	r := delivery.InitRoutes(log, service.Collection{
		Auth:        jwt,
		Courses:     courses,
		Catalog:     catalog.NewCatalogService(log, st, nil),
		Enrollments: enrollment.NewEnrollmentService(log, clock.WallClock, st, courses, nil),
	}, delivery.Options{RequestTimeout: time.Second})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, jwt
}

func clientFor(t *testing.T, srv *httptest.Server, jwt *auth.JWTManager, userID uuid.UUID, role string) *client.Client {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(userID, []string{role}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return client.New(srv.URL, tok, 2*time.Second)
}

func TestClientRoundTrip(t *testing.T) {
	srv, jwt := newServer(t)
	ctx := context.Background()
	admin := clientFor(t, srv, jwt, uuid.New(), models.AdminRole)
	student := clientFor(t, srv, jwt, uuid.New(), models.StudentRole)

	status, err := admin.Status(ctx)
	if err != nil || status != "Available" {
		t.Fatalf("status: %q %v", status, err)
	}

	c, err := admin.CreateCourse(ctx, client.CourseDraft{
		Title:      "Networking",
		Category:   models.CategoryScience,
		Difficulty: models.DifficultyIntermediate,
		Published:  true,
		Contents: []client.ContentDraft{
			{Type: models.ContentTypeVideo, Title: "Packets"},
			{Type: models.ContentTypePDF, Title: "Reading"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c, err = admin.AddContent(ctx, c.ID, models.ContentTypeQuiz)
	if err != nil || len(c.Contents) != 3 {
		t.Fatalf("add content: %v", err)
	}
	c, err = admin.SetContentField(ctx, c.ID, c.Contents[0].ID, models.FieldURL, "https://videos.example/packets.mp4")
	if err != nil || c.Contents[0].URL == "" {
		t.Fatalf("set field: %v", err)
	}
	published := false
	if _, err := admin.UpdateCourse(ctx, c.ID, models.CoursePatch{Published: &published}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	// drafts are hidden from students
	if _, err := student.Course(ctx, c.ID); !errors.Is(err, app_errors.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	published = true
	if _, err := admin.UpdateCourse(ctx, c.ID, models.CoursePatch{Published: &published}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	courses, err := student.ListCourses(ctx, client.CourseQuery{Search: "NETWORK", Category: "All"})
	if err != nil || len(courses) != 1 {
		t.Fatalf("list: %d %v", len(courses), err)
	}

	e, created, err := student.Enroll(ctx, c.ID)
	if err != nil || !created {
		t.Fatalf("enroll: created=%v err=%v", created, err)
	}
	if _, created, err := student.Enroll(ctx, c.ID); err != nil || created {
		t.Fatalf("re-enroll: created=%v err=%v", created, err)
	}
	e, err = student.MarkComplete(ctx, e.ID, c.Contents[2].ID)
	if err != nil || e.Progress != 33 {
		t.Fatalf("mark: %d %v", e.Progress, err)
	}

	views, err := student.Enrollments(ctx)
	if err != nil || len(views) != 1 || views[0].Enrollment.Progress != 33 {
		t.Fatalf("enrollments: %+v %v", views, err)
	}

	if err := admin.DeleteCourse(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := student.Enrollment(ctx, e.ID); !errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound after delete, got %v", err)
	}
}

func TestClientErrorsMapToSentinels(t *testing.T) {
	srv, jwt := newServer(t)
	ctx := context.Background()
	admin := clientFor(t, srv, jwt, uuid.New(), models.AdminRole)
	student := clientFor(t, srv, jwt, uuid.New(), models.StudentRole)

	_, err := admin.CreateCourse(ctx, client.CourseDraft{Title: "", Category: models.CategoryDesign, Difficulty: models.DifficultyBeginner})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if !errors.Is(err, app_errors.ErrValidation) || errors.Is(err, app_errors.ErrCourseNotFound) {
		t.Fatalf("validation error mapped wrongly: %v", err)
	}

	if _, err := student.CreateCourse(ctx, client.CourseDraft{Title: "x"}); !errors.Is(err, app_errors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, _, err := student.Enroll(ctx, uuid.New()); !errors.Is(err, app_errors.ErrCourseNotFound) || errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		t.Fatalf("expected only ErrCourseNotFound, got %v", err)
	}

	anonymous := client.New(srv.URL, "", time.Second)
	if _, err := anonymous.ListCourses(ctx, client.CourseQuery{}); !errors.Is(err, app_errors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	expired, _ := jwt.GenerateAccessToken(uuid.New(), []string{models.StudentRole}, -time.Minute)
	if _, err := client.New(srv.URL, expired, time.Second).Enrollments(ctx); !errors.Is(err, app_errors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestClientTimeoutIsDistinct(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		slow.Close()
	})

	c := client.New(slow.URL, "token", 50*time.Millisecond)
	_, _, err := c.Enroll(context.Background(), uuid.New())
	if !errors.Is(err, client.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("timeout reported as an API answer: %v", apiErr)
	}
	if !strings.Contains(err.Error(), "/enroll") {
		t.Fatalf("error does not name the call: %v", err)
	}
}
