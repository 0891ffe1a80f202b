package models

import (
	"fmt"
	"strings"
	"time"

	"LearnForge/internal/app_errors"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeQuiz  ContentType = "quiz"
)

func ParseContentType(s string) (ContentType, error) {
	switch t := ContentType(strings.ToLower(strings.TrimSpace(s))); t {
	case ContentTypeVideo, ContentTypePDF, ContentTypeQuiz:
		return t, nil
	}
	return "", app_errors.Invalid("type", fmt.Sprintf("unknown content type %q", s))
}

// HasAsset reports whether items of this type carry an uploaded url.
func (t ContentType) HasAsset() bool {
	return t == ContentTypeVideo || t == ContentTypePDF
}

// AcceptsMIME reports whether an upload of the given media type may back an
// item of this type.
func (t ContentType) AcceptsMIME(mime string) bool {
	mime = strings.ToLower(mime)
	switch t {
	case ContentTypeVideo:
		return strings.HasPrefix(mime, "video/")
	case ContentTypePDF:
		return mime == "application/pdf"
	}
	return false
}

type ContentField string

const (
	FieldTitle ContentField = "title"
	FieldType  ContentField = "type"
	FieldURL   ContentField = "url"
)

func ParseContentField(s string) (ContentField, error) {
	switch f := ContentField(s); f {
	case FieldTitle, FieldType, FieldURL:
		return f, nil
	}
	return "", app_errors.Invalid("field", fmt.Sprintf("unknown content field %q", s))
}

type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

type Quiz struct {
	Questions []Question `json:"questions"`
}

func (q *Quiz) Validate() error {
	for i, question := range q.Questions {
		if strings.TrimSpace(question.Text) == "" {
			return app_errors.Invalid(fmt.Sprintf("quiz.questions[%d].text", i), "is required")
		}
		if question.CorrectOption < 0 || question.CorrectOption >= len(question.Options) {
			return app_errors.Invalid(fmt.Sprintf("quiz.questions[%d].correct_option", i), "must index into options")
		}
	}
	return nil
}

// ContentItem is a single lesson unit. URL is meaningful for video and pdf
// items only, Quiz is non-nil for quiz items only.
type ContentItem struct {
	ID        uuid.UUID   `json:"id"`
	CourseID  uuid.UUID   `json:"course_id"`
	Order     int         `json:"order"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	URL       string      `json:"url,omitempty"`
	Quiz      *Quiz       `json:"quiz,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewContentItem returns a blank item of the given type.
func NewContentItem(t ContentType) ContentItem {
	item := ContentItem{ID: uuid.New(), Type: t}
	if t == ContentTypeQuiz {
		item.Quiz = &Quiz{Questions: []Question{}}
	}
	return item
}

func (c *ContentItem) Validate() error {
	switch c.Type {
	case ContentTypeVideo, ContentTypePDF:
		if c.Quiz != nil {
			return app_errors.Invalid("quiz", "only quiz items carry a quiz")
		}
	case ContentTypeQuiz:
		if c.URL != "" {
			return app_errors.Invalid("url", "quiz items have no url")
		}
		if c.Quiz != nil {
			return c.Quiz.Validate()
		}
	default:
		return app_errors.Invalid("type", fmt.Sprintf("unknown content type %q", c.Type))
	}
	return nil
}

// SetField mutates one field. Changing the type clears whatever the new type
// does not carry: a quiz loses its url, a video or pdf loses its quiz.
func (c *ContentItem) SetField(field ContentField, value string) error {
	switch field {
	case FieldTitle:
		c.Title = value
	case FieldURL:
		if !c.Type.HasAsset() {
			return app_errors.Invalid("url", "quiz items have no url")
		}
		c.URL = value
	case FieldType:
		t, err := ParseContentType(value)
		if err != nil {
			return err
		}
		c.changeType(t)
	default:
		return app_errors.Invalid("field", fmt.Sprintf("unknown content field %q", field))
	}
	return nil
}

func (c *ContentItem) changeType(t ContentType) {
	if c.Type == t {
		return
	}
	c.Type = t
	if t == ContentTypeQuiz {
		c.URL = ""
		c.Quiz = &Quiz{Questions: []Question{}}
		return
	}
	c.Quiz = nil
}

func (c *ContentItem) SetQuiz(q Quiz) error {
	if c.Type != ContentTypeQuiz {
		return app_errors.Invalid("type", "item is not a quiz")
	}
	if q.Questions == nil {
		q.Questions = []Question{}
	}
	if err := q.Validate(); err != nil {
		return err
	}
	c.Quiz = &q
	return nil
}
