package models

import (
	"errors"
	"testing"

	"LearnForge/internal/app_errors"

	"github.com/google/uuid"
)

func courseWith(types ...ContentType) *Course {
	c := NewCourse(CourseInput{Title: "Go", Category: CategoryProgramming, Difficulty: DifficultyBeginner})
	c.ID = uuid.New()
	for _, t := range types {
		c.AppendContent(NewContentItem(t))
	}
	return &c
}

func TestProgress_EmptyCourseIsZero(t *testing.T) {
	c := courseWith()
	if got := Progress([]uuid.UUID{uuid.New()}, c); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
	if got := Progress(nil, nil); got != 0 {
		t.Fatalf("expected 0 for nil course got %d", got)
	}
}

func TestProgress_RoundsAndIgnoresStaleAndDuplicateIDs(t *testing.T) {
	c := courseWith(ContentTypeVideo, ContentTypePDF, ContentTypeQuiz)
	v, p := c.Contents[0].ID, c.Contents[1].ID

	cases := []struct {
		name      string
		completed []uuid.UUID
		want      int
	}{
		{"none", nil, 0},
		{"one of three", []uuid.UUID{v}, 33},
		{"two of three", []uuid.UUID{v, p}, 67},
		{"duplicates count once", []uuid.UUID{v, v, v}, 33},
		{"removed item ignored", []uuid.UUID{v, uuid.New()}, 33},
	}
	for _, tc := range cases {
		if got := Progress(tc.completed, c); got != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, got)
		}
	}
}

func TestRemoveContent_KeepsRelativeOrder(t *testing.T) {
	c := courseWith(ContentTypeVideo, ContentTypePDF, ContentTypeQuiz, ContentTypeVideo)
	before := []uuid.UUID{c.Contents[0].ID, c.Contents[1].ID, c.Contents[2].ID, c.Contents[3].ID}

	removed, err := c.RemoveContent(before[1])
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != before[1] {
		t.Fatalf("removed wrong item")
	}
	want := []uuid.UUID{before[0], before[2], before[3]}
	if len(c.Contents) != len(want) {
		t.Fatalf("expected %d items got %d", len(want), len(c.Contents))
	}
	for i, item := range c.Contents {
		if item.ID != want[i] {
			t.Fatalf("position %d: expected %s got %s", i, want[i], item.ID)
		}
		if item.Order != i {
			t.Fatalf("position %d has order %d", i, item.Order)
		}
	}

	if _, err := c.RemoveContent(uuid.New()); !errors.Is(err, app_errors.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound got %v", err)
	}
}

func TestAppendContent_SetsOrderAndCourse(t *testing.T) {
	c := courseWith(ContentTypeVideo)
	item := c.AppendContent(NewContentItem(ContentTypePDF))
	if item.Order != 1 || item.CourseID != c.ID {
		t.Fatalf("unexpected item: order=%d course=%s", item.Order, item.CourseID)
	}
}

func TestNewContentItem_QuizStartsEmpty(t *testing.T) {
	q := NewContentItem(ContentTypeQuiz)
	if q.Quiz == nil || len(q.Quiz.Questions) != 0 {
		t.Fatalf("expected empty quiz, got %+v", q.Quiz)
	}
	v := NewContentItem(ContentTypeVideo)
	if v.Quiz != nil || v.URL != "" {
		t.Fatalf("expected blank video, got %+v", v)
	}
}

func TestSetField_TypeChangeClearsInapplicableFields(t *testing.T) {
	item := NewContentItem(ContentTypeVideo)
	if err := item.SetField(FieldURL, "https://cdn/x.mp4"); err != nil {
		t.Fatalf("set url: %v", err)
	}

	if err := item.SetField(FieldType, "quiz"); err != nil {
		t.Fatalf("to quiz: %v", err)
	}
	if item.URL != "" {
		t.Fatalf("quiz kept url %q", item.URL)
	}
	if item.Quiz == nil {
		t.Fatalf("quiz item has no quiz")
	}

	if err := item.SetField(FieldType, "pdf"); err != nil {
		t.Fatalf("to pdf: %v", err)
	}
	if item.Quiz != nil {
		t.Fatalf("pdf kept quiz")
	}
	if err := item.Validate(); err != nil {
		t.Fatalf("item invalid after transitions: %v", err)
	}
}

func TestSetField_Rejections(t *testing.T) {
	quiz := NewContentItem(ContentTypeQuiz)
	if err := quiz.SetField(FieldURL, "https://x"); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected validation error for url on quiz, got %v", err)
	}
	if err := quiz.SetField(FieldType, "audio"); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
	if err := quiz.SetField(ContentField("order"), "3"); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}

func TestSetQuiz_ValidatesQuestions(t *testing.T) {
	item := NewContentItem(ContentTypeQuiz)
	bad := Quiz{Questions: []Question{{Text: "2+2?", Options: []string{"4"}, CorrectOption: 1}}}
	if err := item.SetQuiz(bad); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	good := Quiz{Questions: []Question{{Text: "2+2?", Options: []string{"3", "4"}, CorrectOption: 1}}}
	if err := item.SetQuiz(good); err != nil {
		t.Fatalf("set quiz: %v", err)
	}

	video := NewContentItem(ContentTypeVideo)
	if err := video.SetQuiz(good); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected validation error on video, got %v", err)
	}
}

func TestCourseValidate(t *testing.T) {
	c := courseWith()
	if err := c.Validate(); err != nil {
		t.Fatalf("valid course rejected: %v", err)
	}

	c.Title = "  "
	var verr *app_errors.ValidationError
	if err := c.Validate(); !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}

	c = courseWith()
	c.Category = "Cooking"
	if err := c.Validate(); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected category validation error, got %v", err)
	}

	c = courseWith()
	c.Pricing = Pricing{Type: PricingPaid}
	if err := c.Validate(); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected pricing validation error, got %v", err)
	}
}

func TestEnrollmentComplete_Idempotent(t *testing.T) {
	c := courseWith(ContentTypeVideo, ContentTypePDF)
	e := NewEnrollment(uuid.New(), c.ID, c.CreatedAt)
	id := c.Contents[0].ID

	if !e.Complete(id) {
		t.Fatalf("first completion should change the set")
	}
	if e.Complete(id) {
		t.Fatalf("second completion should be a no-op")
	}
	if got := e.WithProgress(c).Progress; got != 50 {
		t.Fatalf("expected 50 got %d", got)
	}
}

func TestUploadMediaType(t *testing.T) {
	cases := []struct {
		upload Upload
		want   string
	}{
		{Upload{Filename: "a.bin", ContentType: "Video/MP4"}, "video/mp4"},
		{Upload{Filename: "a.pdf", ContentType: "application/octet-stream"}, "application/pdf"},
		{Upload{Filename: "a.png"}, "image/png"},
		{Upload{Filename: "a", ContentType: "text/plain; charset=utf-8"}, "text/plain"},
	}
	for _, tc := range cases {
		if got := tc.upload.MediaType(); got != tc.want {
			t.Fatalf("%s: expected %q got %q", tc.upload.Filename, tc.want, got)
		}
	}
}
