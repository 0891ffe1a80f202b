package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type ContentPostgres struct {
	db *pgxpool.Pool
}

func NewContentPostgres(db *pgxpool.Pool) *ContentPostgres {
	return &ContentPostgres{db: db}
}

// AddContent appends item at the end of the course. The course row is locked
// so concurrent appends get distinct positions.
func (r *ContentPostgres) AddContent(ctx context.Context, courseID uuid.UUID, item *models.ContentItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCourse(ctx, tx, courseID); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM contents WHERE course_id = $1`, courseID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count contents: %w", err)
	}
	item.CourseID = courseID
	item.Order = count

	if err := insertContent(ctx, tx, item); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ContentPostgres) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	quiz, err := encodeQuiz(item.Quiz)
	if err != nil {
		return err
	}
	query := `
    UPDATE contents SET
        type = $1,
        title = $2,
        url = $3,
        quiz_json = $4,
        updated_at = $5
     WHERE id = $6 AND course_id = $7
    `
	tag, err := r.db.Exec(ctx, query,
		item.Type, item.Title, item.URL, quiz, item.UpdatedAt, item.ID, item.CourseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrContentNotFound
	}
	return nil
}

// DeleteContentAndUpdateOrder removes the item and shifts every later item one
// position left.
func (r *ContentPostgres) DeleteContentAndUpdateOrder(ctx context.Context, courseID, itemID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCourse(ctx, tx, courseID); err != nil {
		return err
	}

	var order int
	err = tx.QueryRow(ctx,
		`DELETE FROM contents WHERE id = $1 AND course_id = $2 RETURNING order_num`,
		itemID, courseID,
	).Scan(&order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrContentNotFound
		}
		return fmt.Errorf("failed to delete content: %w", err)
	}

	updateQuery := `
        UPDATE contents SET order_num = order_num - 1
         WHERE course_id = $1 AND order_num > $2
    `
	if _, err = tx.Exec(ctx, updateQuery, courseID, order); err != nil {
		return fmt.Errorf("failed to shift content order: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ContentPostgres) ContentsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.ContentItem, error) {
	return contentsByCourse(ctx, r.db, courseID)
}

func lockCourse(ctx context.Context, q querier, courseID uuid.UUID) error {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, courseID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrCourseNotFound
		}
		return fmt.Errorf("failed to lock course: %w", err)
	}
	return nil
}

func insertContent(ctx context.Context, q querier, item *models.ContentItem) error {
	quiz, err := encodeQuiz(item.Quiz)
	if err != nil {
		return err
	}
	query := `
    INSERT INTO contents (
        id, course_id, order_num, type, title, url, quiz_json, created_at, updated_at
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `
	_, err = q.Exec(ctx, query,
		item.ID, item.CourseID, item.Order, item.Type, item.Title, item.URL, quiz,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}
	return nil
}

func contentsByCourse(ctx context.Context, q querier, courseID uuid.UUID) ([]models.ContentItem, error) {
	query := `
    SELECT id, course_id, order_num, type, title, url, quiz_json, created_at, updated_at
      FROM contents
     WHERE course_id = $1
  ORDER BY order_num
    `
	rows, err := q.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	contents := make([]models.ContentItem, 0)
	for rows.Next() {
		var c models.ContentItem
		var quiz []byte
		if err := rows.Scan(
			&c.ID, &c.CourseID, &c.Order, &c.Type, &c.Title, &c.URL, &quiz,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(quiz) > 0 {
			c.Quiz = &models.Quiz{}
			if err := json.Unmarshal(quiz, c.Quiz); err != nil {
				return nil, fmt.Errorf("failed to decode quiz of content %s: %w", c.ID, err)
			}
			if c.Quiz.Questions == nil {
				c.Quiz.Questions = []models.Question{}
			}
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

func encodeQuiz(q *models.Quiz) ([]byte, error) {
	if q == nil {
		return nil, nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz: %w", err)
	}
	return b, nil
}
