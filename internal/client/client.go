// Package client talks to the LearnForge HTTP API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/delivery/http/controllers/response"
	"LearnForge/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const DefaultTimeout = 10 * time.Second

// ErrTimeout means the call did not finish in time. The server may or may not
// have applied it.
var ErrTimeout = errors.New("request timed out, outcome unknown")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Is lets callers test API errors against the same sentinels the server uses.
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case response.CodeValidation:
		return target == app_errors.ErrValidation
	case response.CodeNotFound:
		switch target {
		case app_errors.ErrCourseNotFound, app_errors.ErrContentNotFound, app_errors.ErrEnrollmentNotFound:
			return strings.Contains(e.Message, target.Error())
		}
	case response.CodeUpload:
		switch target {
		case app_errors.ErrUpload:
			return true
		case app_errors.ErrFileSize:
			return e.Status == http.StatusRequestEntityTooLarge
		case app_errors.ErrUnsupportedMedia:
			return e.Status == http.StatusUnsupportedMediaType
		}
	case response.CodeForbidden:
		return target == app_errors.ErrForbidden
	case response.CodeTimeout:
		return target == ErrTimeout
	case response.CodeUnauthorized:
		switch target {
		case app_errors.ErrTokenExpired:
			return strings.Contains(e.Message, app_errors.ErrTokenExpired.Error())
		case app_errors.ErrInvalidToken:
			return !strings.Contains(e.Message, app_errors.ErrTokenExpired.Error())
		}
	}
	return false
}

type Client struct {
	http    *resty.Client
	timeout time.Duration
}

// New returns a client for the API at baseURL, for example
// "http://localhost:8081". token is sent as a bearer token when not empty.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/v1").
		SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &Client{http: rc, timeout: timeout}
}

type CourseQuery struct {
	Search     string
	Category   string
	Difficulty string
	SortBy     string
}

func (q CourseQuery) params() map[string]string {
	params := map[string]string{}
	for k, v := range map[string]string{
		"search":     q.Search,
		"category":   q.Category,
		"difficulty": q.Difficulty,
		"sort_by":    q.SortBy,
	} {
		if v != "" {
			params[k] = v
		}
	}
	return params
}

type ContentDraft struct {
	Type  models.ContentType `json:"type"`
	Title string             `json:"title,omitempty"`
	URL   string             `json:"url,omitempty"`
	Quiz  *models.Quiz       `json:"quiz,omitempty"`
}

type CourseDraft struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Category    models.Category   `json:"category"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Instructor  string            `json:"instructor,omitempty"`
	Thumbnail   string            `json:"thumbnail,omitempty"`
	Published   bool              `json:"published"`
	Pricing     *models.Pricing   `json:"pricing,omitempty"`
	Contents    []ContentDraft    `json:"contents,omitempty"`
}

// call runs one request under the per-call deadline and decodes the answer
// into out.
func (c *Client) call(ctx context.Context, method, path string, prepare func(*resty.Request), out any) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.http.R().
		SetContext(ctx).
		SetError(&response.ErrorEnvelope{})
	if out != nil {
		req.SetResult(out)
	}
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Code: response.CodeInternal, Message: resp.Status()}
		if env, ok := resp.Error().(*response.ErrorEnvelope); ok && env.Error.Message != "" {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return resp, apiErr
	}
	return resp, nil
}

func jsonBody(body any) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
}

func fileBody(filename string, body io.Reader) func(*resty.Request) {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return func(r *resty.Request) {
		r.SetMultipartField("file", filepath.Base(filename), contentType, body)
	}
}

func (c *Client) Status(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	resp, err := c.call(ctx, http.MethodGet, "/status", nil, &out)
	if err != nil {
		var apiErr *APIError
		// a degraded server still reports its status
		if errors.As(err, &apiErr) && resp != nil && resp.StatusCode() == http.StatusServiceUnavailable {
			return "Degraded", nil
		}
		return "", err
	}
	return out.Status, nil
}

func (c *Client) ListCourses(ctx context.Context, q CourseQuery) ([]models.CourseSummary, error) {
	var out struct {
		Courses []models.CourseSummary `json:"courses"`
	}
	_, err := c.call(ctx, http.MethodGet, "/courses", func(r *resty.Request) {
		r.SetQueryParams(q.params())
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Courses, nil
}

func (c *Client) Course(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodGet, "/courses/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCourse(ctx context.Context, draft CourseDraft) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodPost, "/courses", jsonBody(draft), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodPatch, "/courses/"+id.String(), jsonBody(patch), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	_, err := c.call(ctx, http.MethodDelete, "/courses/"+id.String(), nil, nil)
	return err
}

func (c *Client) AddContent(ctx context.Context, courseID uuid.UUID, t models.ContentType) (*models.Course, error) {
	var out models.Course
	body := map[string]string{"type": string(t)}
	if _, err := c.call(ctx, http.MethodPost, contentsPath(courseID), jsonBody(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveContent(ctx context.Context, courseID, itemID uuid.UUID) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodDelete, contentPath(courseID, itemID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetContentField(ctx context.Context, courseID, itemID uuid.UUID, field models.ContentField, value string) (*models.Course, error) {
	var out models.Course
	body := map[string]string{"field": string(field), "value": value}
	if _, err := c.call(ctx, http.MethodPatch, contentPath(courseID, itemID), jsonBody(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetQuiz(ctx context.Context, courseID, itemID uuid.UUID, quiz models.Quiz) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodPut, contentPath(courseID, itemID)+"/quiz", jsonBody(quiz), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAsset stores a free-standing course asset and returns its url.
func (c *Client) UploadAsset(ctx context.Context, courseID uuid.UUID, filename string, body io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.call(ctx, http.MethodPost, coursePath(courseID)+"/assets", fileBody(filename, body), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) UploadContentAsset(ctx context.Context, courseID, itemID uuid.UUID, filename string, body io.Reader) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodPost, contentPath(courseID, itemID)+"/asset", fileBody(filename, body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadThumbnail(ctx context.Context, courseID uuid.UUID, filename string, body io.Reader) (*models.Course, error) {
	var out models.Course
	if _, err := c.call(ctx, http.MethodPut, coursePath(courseID)+"/thumbnail", fileBody(filename, body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll reports created=false when the student was already enrolled.
func (c *Client) Enroll(ctx context.Context, courseID uuid.UUID) (models.Enrollment, bool, error) {
	var out models.Enrollment
	resp, err := c.call(ctx, http.MethodPost, coursePath(courseID)+"/enroll", nil, &out)
	if err != nil {
		return models.Enrollment{}, false, err
	}
	return out, resp.StatusCode() == http.StatusCreated, nil
}

func (c *Client) Enrollments(ctx context.Context) ([]models.EnrollmentView, error) {
	var out struct {
		Enrollments []models.EnrollmentView `json:"enrollments"`
	}
	if _, err := c.call(ctx, http.MethodGet, "/enrollments", nil, &out); err != nil {
		return nil, err
	}
	return out.Enrollments, nil
}

func (c *Client) Enrollment(ctx context.Context, id uuid.UUID) (models.Enrollment, error) {
	var out models.Enrollment
	if _, err := c.call(ctx, http.MethodGet, "/enrollments/"+id.String(), nil, &out); err != nil {
		return models.Enrollment{}, err
	}
	return out, nil
}

func (c *Client) MarkComplete(ctx context.Context, enrollmentID, contentID uuid.UUID) (models.Enrollment, error) {
	var out models.Enrollment
	body := map[string]string{"content_id": contentID.String()}
	if _, err := c.call(ctx, http.MethodPost, "/enrollments/"+enrollmentID.String()+"/complete", jsonBody(body), &out); err != nil {
		return models.Enrollment{}, err
	}
	return out, nil
}

func coursePath(id uuid.UUID) string {
	return "/courses/" + id.String()
}

func contentsPath(courseID uuid.UUID) string {
	return coursePath(courseID) + "/contents"
}

func contentPath(courseID, itemID uuid.UUID) string {
	return contentsPath(courseID) + "/" + itemID.String()
}
