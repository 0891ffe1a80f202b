package postgres

import (
	"context"
	"errors"
	"fmt"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `
    c.id, c.title, c.description, c.category, c.difficulty, c.instructor,
    c.thumbnail, c.published, c.pricing_type, c.price, c.show_strikethrough,
    c.created_at, c.updated_at`

// CreateCourse inserts the course and its initial contents in one transaction.
func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO courses (
            id, title, description, category, difficulty, instructor,
            thumbnail, published, pricing_type, price, show_strikethrough,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    `
	_, err = tx.Exec(ctx, query,
		course.ID, course.Title, course.Description, course.Category, course.Difficulty, course.Instructor,
		course.Thumbnail, course.Published, course.Pricing.Type, course.Pricing.Price, course.Pricing.ShowStrikethrough,
		course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	for i := range course.Contents {
		if err := insertContent(ctx, tx, &course.Contents[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT` + courseColumns + ` FROM courses c WHERE c.id = $1`
	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	contents, err := contentsByCourse(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	course.Contents = contents
	return course, nil
}

// UpdateCourse writes the metadata columns. Contents are not touched.
func (r *CoursePostgres) UpdateCourse(ctx context.Context, course *models.Course) error {
	query := `
        UPDATE courses SET
            title = $1, description = $2, category = $3, difficulty = $4,
            instructor = $5, thumbnail = $6, published = $7,
            pricing_type = $8, price = $9, show_strikethrough = $10,
            updated_at = $11
         WHERE id = $12
    `
	tag, err := r.db.Exec(ctx, query,
		course.Title, course.Description, course.Category, course.Difficulty,
		course.Instructor, course.Thumbnail, course.Published,
		course.Pricing.Type, course.Pricing.Price, course.Pricing.ShowStrikethrough,
		course.UpdatedAt, course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

// DeleteCourse relies on ON DELETE CASCADE for contents and enrollments.
func (r *CoursePostgres) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) ListSummaries(ctx context.Context, includeDrafts bool) ([]models.CourseSummary, error) {
	query := `
        SELECT` + courseColumns + `,
            (SELECT COUNT(*) FROM contents ct WHERE ct.course_id = c.id)
          FROM courses c
         WHERE $1 OR c.published
      ORDER BY c.created_at DESC, c.id
    `
	return r.querySummaries(ctx, query, includeDrafts)
}

func (r *CoursePostgres) SummariesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CourseSummary, error) {
	if len(ids) == 0 {
		return []models.CourseSummary{}, nil
	}
	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}
	query := `
        SELECT` + courseColumns + `,
            (SELECT COUNT(*) FROM contents ct WHERE ct.course_id = c.id)
          FROM courses c
         WHERE c.id = ANY($1::uuid[])
      ORDER BY c.created_at DESC, c.id
    `
	return r.querySummaries(ctx, query, strIDs)
}

// AllSummaries returns every course, drafts included. Used to rebuild the
// search index.
func (r *CoursePostgres) AllSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	return r.ListSummaries(ctx, true)
}

func (r *CoursePostgres) querySummaries(ctx context.Context, query string, args ...any) ([]models.CourseSummary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.CourseSummary, 0)
	for rows.Next() {
		var c models.Course
		var count int
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty, &c.Instructor,
			&c.Thumbnail, &c.Published, &c.Pricing.Type, &c.Pricing.Price, &c.Pricing.ShowStrikethrough,
			&c.CreatedAt, &c.UpdatedAt, &count,
		); err != nil {
			return nil, err
		}
		s := c.Summary()
		s.ContentCount = count
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty, &c.Instructor,
		&c.Thumbnail, &c.Published, &c.Pricing.Type, &c.Pricing.Price, &c.Pricing.ShowStrikethrough,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
