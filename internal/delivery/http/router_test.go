package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"LearnForge/internal/delivery/http/controllers"
	"LearnForge/internal/delivery/http/controllers/response"
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

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	jwt    *auth.JWTManager
	admin  string
}

func newTestAPI(t *testing.T, checks map[string]controllers.Check) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	st := memory.New()
	courses := course.NewCourseService(log, st, st)
	jwt := auth.NewJWTManager("test-secret", "learnforge")
	u := service.Collection{
		Auth:        jwt,
		Courses:     courses,
		Catalog:     catalog.NewCatalogService(log, st, nil),
		Enrollments: enrollment.NewEnrollmentService(log, clock.WallClock, st, courses, nil),
	}
	api := &testAPI{
		t:      t,
		router: InitRoutes(log, u, Options{RequestTimeout: time.Second, Checks: checks}),
		jwt:    jwt,
	}
	api.admin = api.token(uuid.New(), models.AdminRole)
	return api
}

func (a *testAPI) token(userID uuid.UUID, roles ...string) string {
	a.t.Helper()
	tok, err := a.jwt.GenerateAccessToken(userID, roles, time.Hour)
	if err != nil {
		a.t.Fatalf("token: %v", err)
	}
	return tok
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	env := decode[response.ErrorEnvelope](t, rec)
	if env.Error.Code != code {
		t.Fatalf("unexpected error code: got=%q want=%q", env.Error.Code, code)
	}
}

func (a *testAPI) createCourse(published bool, contentTypes ...string) models.Course {
	a.t.Helper()
	contents := make([]map[string]string, 0, len(contentTypes))
	for _, ct := range contentTypes {
		contents = append(contents, map[string]string{"type": ct, "title": ct + " lesson"})
	}
	rec := a.do(http.MethodPost, "/v1/courses", a.admin, map[string]any{
		"title":      "Go for Beginners",
		"category":   "Programming",
		"difficulty": "Beginner",
		"published":  published,
		"contents":   contents,
	})
	expectStatus(a.t, rec, http.StatusCreated)
	return decode[models.Course](a.t, rec)
}

func TestStatus(t *testing.T) {
	api := newTestAPI(t, map[string]controllers.Check{
		"postgres": func(context.Context) error { return nil },
	})
	rec := api.do(http.MethodGet, "/v1/status", "", nil)
	expectStatus(t, rec, http.StatusOK)

	degraded := newTestAPI(t, map[string]controllers.Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = degraded.do(http.MethodGet, "/v1/status", "", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	if body := decode[map[string]any](t, rec); body["status"] != "Degraded" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t, nil)

	expectError(t, api.do(http.MethodGet, "/v1/courses", "", nil), http.StatusUnauthorized, response.CodeUnauthorized)
	expectError(t, api.do(http.MethodGet, "/v1/courses", "garbage", nil), http.StatusUnauthorized, response.CodeUnauthorized)

	expired, err := api.jwt.GenerateAccessToken(uuid.New(), []string{models.StudentRole}, -time.Minute)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	rec := api.do(http.MethodGet, "/v1/courses", expired, nil)
	expectError(t, rec, http.StatusUnauthorized, response.CodeUnauthorized)

	other := auth.NewJWTManager("another-secret", "learnforge")
	forged, _ := other.GenerateAccessToken(uuid.New(), []string{models.AdminRole}, time.Hour)
	expectError(t, api.do(http.MethodGet, "/v1/courses", forged, nil), http.StatusUnauthorized, response.CodeUnauthorized)
}

func TestCourseManagementRequiresAdmin(t *testing.T) {
	api := newTestAPI(t, nil)
	student := api.token(uuid.New(), models.StudentRole)

	rec := api.do(http.MethodPost, "/v1/courses", student, map[string]any{
		"title": "x", "category": "Design", "difficulty": "Beginner",
	})
	expectError(t, rec, http.StatusForbidden, response.CodeForbidden)
}

func TestCreateCourse_Validation(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/v1/courses", api.admin, map[string]any{
		"title": "x", "category": "Cooking", "difficulty": "Beginner",
	})
	expectError(t, rec, http.StatusBadRequest, response.CodeValidation)

	rec = api.do(http.MethodPost, "/v1/courses", api.admin, map[string]any{
		"title": "x", "category": "Design", "difficulty": "Beginner",
		"contents": []map[string]string{{"type": "podcast"}},
	})
	expectError(t, rec, http.StatusBadRequest, response.CodeValidation)
}

func TestCatalogListingAndDrafts(t *testing.T) {
	api := newTestAPI(t, nil)
	published := api.createCourse(true, "video")
	draft := api.createCourse(false)
	student := api.token(uuid.New(), models.StudentRole)

	rec := api.do(http.MethodGet, "/v1/courses?category=programming&sort_by=title", student, nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[struct {
		Courses []models.CourseSummary `json:"courses"`
	}](t, rec)
	if len(list.Courses) != 1 || list.Courses[0].ID != published.ID || list.Courses[0].ContentCount != 1 {
		t.Fatalf("unexpected student listing: %+v", list.Courses)
	}

	rec = api.do(http.MethodGet, "/v1/courses", api.admin, nil)
	expectStatus(t, rec, http.StatusOK)
	list = decode[struct {
		Courses []models.CourseSummary `json:"courses"`
	}](t, rec)
	if len(list.Courses) != 2 {
		t.Fatalf("admin should see drafts, got %d courses", len(list.Courses))
	}

	expectError(t, api.do(http.MethodGet, "/v1/courses/"+draft.ID.String(), student, nil), http.StatusNotFound, response.CodeNotFound)
	expectStatus(t, api.do(http.MethodGet, "/v1/courses/"+draft.ID.String(), api.admin, nil), http.StatusOK)
	expectError(t, api.do(http.MethodGet, "/v1/courses?difficulty=Expert", student, nil), http.StatusBadRequest, response.CodeValidation)
	expectError(t, api.do(http.MethodGet, "/v1/courses/not-a-uuid", student, nil), http.StatusBadRequest, response.CodeValidation)
}

func TestContentAuthoring(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.createCourse(true, "video", "pdf")
	base := "/v1/courses/" + c.ID.String() + "/contents"

	rec := api.do(http.MethodPost, base, api.admin, map[string]string{"type": "quiz"})
	expectStatus(t, rec, http.StatusCreated)
	c = decode[models.Course](t, rec)
	if len(c.Contents) != 3 || c.Contents[2].Type != models.ContentTypeQuiz {
		t.Fatalf("unexpected contents: %+v", c.Contents)
	}
	quizID := c.Contents[2].ID

	rec = api.do(http.MethodPatch, base+"/"+quizID.String(), api.admin, map[string]string{"field": "url", "value": "https://x"})
	expectError(t, rec, http.StatusBadRequest, response.CodeValidation)

	rec = api.do(http.MethodPut, base+"/"+quizID.String()+"/quiz", api.admin, models.Quiz{
		Questions: []models.Question{{Text: "Zero value of int?", Options: []string{"0", "nil"}, CorrectOption: 0}},
	})
	expectStatus(t, rec, http.StatusOK)

	rec = api.do(http.MethodPatch, base+"/"+c.Contents[0].ID.String(), api.admin, map[string]string{"field": "title", "value": "Welcome"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[models.Course](t, rec).Contents[0].Title; got != "Welcome" {
		t.Fatalf("title not set: %q", got)
	}

	rec = api.do(http.MethodDelete, base+"/"+c.Contents[1].ID.String(), api.admin, nil)
	expectStatus(t, rec, http.StatusOK)
	c = decode[models.Course](t, rec)
	if len(c.Contents) != 2 || c.Contents[1].ID != quizID || c.Contents[1].Order != 1 {
		t.Fatalf("unexpected contents after remove: %+v", c.Contents)
	}

	expectError(t, api.do(http.MethodDelete, base+"/"+uuid.NewString(), api.admin, nil), http.StatusNotFound, response.CodeNotFound)
}

func TestUploadWithoutAssetStoreIsInternal(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.createCourse(true, "pdf")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="notes.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4"))
	_ = mw.Close()

	path := "/v1/courses/" + c.ID.String() + "/contents/" + c.Contents[0].ID.String() + "/asset"
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.admin)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	expectError(t, rec, http.StatusInternalServerError, response.CodeInternal)

	// missing file field
	rec = api.do(http.MethodPut, "/v1/courses/"+c.ID.String()+"/thumbnail", api.admin, nil)
	expectError(t, rec, http.StatusBadRequest, response.CodeValidation)
}

func TestEnrollmentFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.createCourse(true, "video", "pdf", "quiz")
	studentID := uuid.New()
	student := api.token(studentID, models.StudentRole)

	rec := api.do(http.MethodPost, "/v1/courses/"+c.ID.String()+"/enroll", student, nil)
	expectStatus(t, rec, http.StatusCreated)
	e := decode[models.Enrollment](t, rec)

	rec = api.do(http.MethodPost, "/v1/courses/"+c.ID.String()+"/enroll", student, nil)
	expectStatus(t, rec, http.StatusOK)
	if again := decode[models.Enrollment](t, rec); again.ID != e.ID {
		t.Fatalf("re-enroll created a new enrollment")
	}

	complete := "/v1/enrollments/" + e.ID.String() + "/complete"
	rec = api.do(http.MethodPost, complete, student, map[string]string{"content_id": c.Contents[0].ID.String()})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[models.Enrollment](t, rec).Progress; got != 33 {
		t.Fatalf("expected 33 got %d", got)
	}

	expectError(t, api.do(http.MethodPost, complete, student, map[string]string{}), http.StatusBadRequest, response.CodeValidation)

	intruder := api.token(uuid.New(), models.StudentRole)
	expectError(t, api.do(http.MethodPost, complete, intruder, map[string]string{"content_id": c.Contents[1].ID.String()}), http.StatusForbidden, response.CodeForbidden)
	expectError(t, api.do(http.MethodGet, "/v1/enrollments/"+e.ID.String(), intruder, nil), http.StatusForbidden, response.CodeForbidden)
	expectError(t, api.do(http.MethodGet, "/v1/enrollments/"+uuid.NewString(), student, nil), http.StatusNotFound, response.CodeNotFound)

	rec = api.do(http.MethodGet, "/v1/enrollments", student, nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[struct {
		Enrollments []models.EnrollmentView `json:"enrollments"`
	}](t, rec)
	if len(list.Enrollments) != 1 || list.Enrollments[0].Course.ID != c.ID || list.Enrollments[0].Enrollment.Progress != 33 {
		t.Fatalf("unexpected enrollments: %+v", list.Enrollments)
	}

	expectError(t, api.do(http.MethodPost, "/v1/courses/"+uuid.NewString()+"/enroll", student, nil), http.StatusNotFound, response.CodeNotFound)
	expectError(t, api.do(http.MethodPost, "/v1/courses/"+c.ID.String()+"/enroll", api.admin, nil), http.StatusForbidden, response.CodeForbidden)
}

func TestDeleteCourse(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.createCourse(true)

	rec := api.do(http.MethodDelete, "/v1/courses/"+c.ID.String(), api.admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if body := decode[map[string]string](t, rec); body["status"] != "deleted" {
		t.Fatalf("unexpected body: %v", body)
	}
	expectError(t, api.do(http.MethodDelete, "/v1/courses/"+c.ID.String(), api.admin, nil), http.StatusNotFound, response.CodeNotFound)
}
