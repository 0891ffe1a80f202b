package models

import (
	"strings"
	"time"

	"LearnForge/internal/app_errors"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryProgramming Category = "Programming"
	CategoryDesign      Category = "Design"
	CategoryBusiness    Category = "Business"
	CategoryMarketing   Category = "Marketing"
	CategoryScience     Category = "Science"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryProgramming,
	CategoryDesign,
	CategoryBusiness,
	CategoryMarketing,
	CategoryScience,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

type PricingType string

const (
	PricingFree PricingType = "free"
	PricingPaid PricingType = "paid"
)

// Pricing is either free or paid with a positive price. ShowStrikethrough is
// a display hint only.
type Pricing struct {
	Type              PricingType `json:"type"`
	Price             int         `json:"price,omitempty"`
	ShowStrikethrough bool        `json:"show_strikethrough,omitempty"`
}

func (p Pricing) Validate() error {
	switch p.Type {
	case PricingFree:
		if p.Price != 0 {
			return app_errors.Invalid("pricing.price", "free course cannot have a price")
		}
	case PricingPaid:
		if p.Price <= 0 {
			return app_errors.Invalid("pricing.price", "paid course requires a positive price")
		}
	default:
		return app_errors.Invalid("pricing.type", "must be free or paid")
	}
	return nil
}

type Course struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	Difficulty  Difficulty    `json:"difficulty"`
	Instructor  string        `json:"instructor,omitempty"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	Published   bool          `json:"published"`
	Pricing     Pricing       `json:"pricing"`
	Contents    []ContentItem `json:"contents"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CourseSummary is the listing projection of a course.
type CourseSummary struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	Instructor   string     `json:"instructor,omitempty"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	Published    bool       `json:"published"`
	Pricing      Pricing    `json:"pricing"`
	ContentCount int        `json:"content_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (c *Course) Summary() CourseSummary {
	return CourseSummary{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		Instructor:   c.Instructor,
		Thumbnail:    c.Thumbnail,
		Published:    c.Published,
		Pricing:      c.Pricing,
		ContentCount: len(c.Contents),
		CreatedAt:    c.CreatedAt,
	}
}

// CourseInput carries the author-supplied metadata of a new course.
type CourseInput struct {
	Title       string
	Description string
	Category    Category
	Difficulty  Difficulty
	Instructor  string
	Thumbnail   string
	Published   bool
	Pricing     *Pricing
}

// CoursePatch replaces only the non-nil fields.
type CoursePatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
	Instructor  *string     `json:"instructor,omitempty"`
	Thumbnail   *string     `json:"thumbnail,omitempty"`
	Published   *bool       `json:"published,omitempty"`
	Pricing     *Pricing    `json:"pricing,omitempty"`
}

func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Difficulty != nil {
		c.Difficulty = *p.Difficulty
	}
	if p.Instructor != nil {
		c.Instructor = *p.Instructor
	}
	if p.Thumbnail != nil {
		c.Thumbnail = *p.Thumbnail
	}
	if p.Published != nil {
		c.Published = *p.Published
	}
	if p.Pricing != nil {
		c.Pricing = *p.Pricing
	}
}

func NewCourse(in CourseInput) Course {
	pricing := Pricing{Type: PricingFree}
	if in.Pricing != nil {
		pricing = *in.Pricing
	}
	return Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		Instructor:  in.Instructor,
		Thumbnail:   in.Thumbnail,
		Published:   in.Published,
		Pricing:     pricing,
		Contents:    []ContentItem{},
	}
}

// ValidateMetadata checks every course field except contents.
func (c *Course) ValidateMetadata() error {
	if strings.TrimSpace(c.Title) == "" {
		return app_errors.Invalid("title", "is required")
	}
	if !c.Category.Valid() {
		return app_errors.Invalid("category", "unknown category "+string(c.Category))
	}
	if !c.Difficulty.Valid() {
		return app_errors.Invalid("difficulty", "unknown difficulty "+string(c.Difficulty))
	}
	return c.Pricing.Validate()
}

func (c *Course) Validate() error {
	if err := c.ValidateMetadata(); err != nil {
		return err
	}
	for i := range c.Contents {
		if err := c.Contents[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ContentIDs returns the ids of the course's current content items.
func (c *Course) ContentIDs() map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(c.Contents))
	for _, item := range c.Contents {
		ids[item.ID] = struct{}{}
	}
	return ids
}

func (c *Course) ContentIndex(id uuid.UUID) int {
	for i, item := range c.Contents {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Course) HasContent(id uuid.UUID) bool {
	return c.ContentIndex(id) >= 0
}

// AppendContent puts item at the end of the course.
func (c *Course) AppendContent(item ContentItem) ContentItem {
	item.CourseID = c.ID
	item.Order = len(c.Contents)
	c.Contents = append(c.Contents, item)
	return item
}

// RemoveContent drops the item with the given id and renumbers the rest so
// that order stays dense.
func (c *Course) RemoveContent(id uuid.UUID) (ContentItem, error) {
	idx := c.ContentIndex(id)
	if idx < 0 {
		return ContentItem{}, app_errors.ErrContentNotFound
	}
	removed := c.Contents[idx]
	c.Contents = append(c.Contents[:idx:idx], c.Contents[idx+1:]...)
	for i := range c.Contents {
		c.Contents[i].Order = i
	}
	return removed, nil
}
