package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"LearnForge/internal/app_errors"
	"LearnForge/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

const enrollmentSelect = `
    SELECT e.id, e.student_id, e.course_id, e.enrolled_at,
           COALESCE(array_agg(ec.content_id::text) FILTER (WHERE ec.content_id IS NOT NULL), '{}')
      FROM enrollments e
 LEFT JOIN enrollment_completions ec ON ec.enrollment_id = e.id
`

// Enroll inserts e unless the (student, course) pair is already enrolled, in
// which case the existing row is returned.
func (r *EnrollmentPostgres) Enroll(ctx context.Context, e models.Enrollment) (models.Enrollment, bool, error) {
	query := `
        INSERT INTO enrollments (id, student_id, course_id, enrolled_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id, course_id) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, e.ID, e.StudentID, e.CourseID, e.EnrolledAt)
	if err != nil {
		if isCode(err, codeForeignKeyViolation) {
			return models.Enrollment{}, false, app_errors.ErrCourseNotFound
		}
		if !isCode(err, codeUniqueViolation) {
			return models.Enrollment{}, false, fmt.Errorf("failed to enroll: %w", err)
		}
		tag = pgconn.CommandTag{}
	}

	created := tag.RowsAffected() == 1
	stored, err := r.enrollmentByPair(ctx, e.StudentID, e.CourseID)
	if err != nil {
		return models.Enrollment{}, false, err
	}
	return *stored, created, nil
}

func (r *EnrollmentPostgres) EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	query := enrollmentSelect + ` WHERE e.id = $1 GROUP BY e.id`
	e, err := scanEnrollment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (r *EnrollmentPostgres) enrollmentByPair(ctx context.Context, studentID, courseID uuid.UUID) (*models.Enrollment, error) {
	query := enrollmentSelect + ` WHERE e.student_id = $1 AND e.course_id = $2 GROUP BY e.id`
	e, err := scanEnrollment(r.db.QueryRow(ctx, query, studentID, courseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// the course was deleted between insert and read
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (r *EnrollmentPostgres) EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	query := enrollmentSelect + ` WHERE e.student_id = $1 GROUP BY e.id ORDER BY e.enrolled_at, e.id`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

// AddCompletedContent is a single statement: the membership check and the
// set insert cannot interleave with a concurrent removal or duplicate mark.
func (r *EnrollmentPostgres) AddCompletedContent(ctx context.Context, enrollmentID, contentID uuid.UUID, at time.Time) (bool, error) {
	query := `
        INSERT INTO enrollment_completions (enrollment_id, content_id, completed_at)
        SELECT e.id, c.id, $3::timestamptz
          FROM enrollments e
          JOIN contents c ON c.course_id = e.course_id AND c.id = $2
         WHERE e.id = $1
        ON CONFLICT (enrollment_id, content_id) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, enrollmentID, contentID, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark content complete: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	var completed []string
	if err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrolledAt, &completed); err != nil {
		return nil, err
	}
	e.CompletedContentIDs = make([]uuid.UUID, 0, len(completed))
	for _, s := range completed {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse completed content id %q: %w", s, err)
		}
		e.CompletedContentIDs = append(e.CompletedContentIDs, id)
	}
	return &e, nil
}
