package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/repository"
)

// ProgressRepository implements port.ProgressRepository using PostgreSQL.
// Enrollment and lesson completion both rely on composite primary keys plus
// ON CONFLICT DO NOTHING, so duplicate submissions collapse into no-ops at
// the database rather than in application code.
type ProgressRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProgressRepository wires a PostgreSQL-backed progress repository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithExecutor returns a repository instance operating over the supplied
// executor (a transaction or a mock).
func (r *ProgressRepository) WithExecutor(exec pgExecutor) *ProgressRepository {
	if exec == nil {
		return r
	}
	return &ProgressRepository{
		pool:    r.pool,
		exec:    exec,
		builder: r.builder,
	}
}

// AddEnrollment inserts the (account, course) pair if absent. The conditional
// insert makes concurrent enrollments race-free: exactly one caller observes
// added=true.
func (r *ProgressRepository) AddEnrollment(ctx context.Context, accountID, courseID string, at time.Time) (bool, error) {
	stmt, args, err := r.builder.Insert("enrollments").
		Columns("account_id", "course_id", "enrolled_at").
		Values(accountID, courseID, at.UTC()).
		Suffix("ON CONFLICT (account_id, course_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert enrollment sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("insert enrollment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// IsEnrolled reports whether the account is enrolled in the course.
func (r *ProgressRepository) IsEnrolled(ctx context.Context, accountID, courseID string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("enrollments").
		Where(squirrel.Eq{"account_id": accountID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select enrollment sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select enrollment: %w", err)
	}

	return true, nil
}

// ListEnrollments returns the account's enrollments, newest first.
func (r *ProgressRepository) ListEnrollments(ctx context.Context, accountID string) ([]domain.Enrollment, error) {
	stmt, args, err := r.builder.Select("account_id", "course_id", "enrolled_at").
		From("enrollments").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("enrolled_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list enrollments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.AccountID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}

	return enrollments, nil
}

// RecordCompletion upserts the per-course progress row, always refreshing
// last_accessed, then adds the lesson index if not already present. The
// second statement's rows-affected count distinguishes a first completion
// from a repeat.
func (r *ProgressRepository) RecordCompletion(ctx context.Context, accountID, courseID string, lessonIndex int, at time.Time) (bool, error) {
	progressStmt, progressArgs, err := r.builder.Insert("course_progress").
		Columns("account_id", "course_id", "last_accessed").
		Values(accountID, courseID, at.UTC()).
		Suffix("ON CONFLICT (account_id, course_id) DO UPDATE SET last_accessed = EXCLUDED.last_accessed").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert progress sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, progressStmt, progressArgs...); err != nil {
		return false, fmt.Errorf("upsert progress: %w", err)
	}

	completionStmt, completionArgs, err := r.builder.Insert("lesson_completions").
		Columns("account_id", "course_id", "lesson_index", "completed_at").
		Values(accountID, courseID, lessonIndex, at.UTC()).
		Suffix("ON CONFLICT (account_id, course_id, lesson_index) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert completion sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, completionStmt, completionArgs...)
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetProgress returns the progress row with its completed lesson indices
// in ascending order.
func (r *ProgressRepository) GetProgress(ctx context.Context, accountID, courseID string) (*domain.CourseProgress, error) {
	stmt, args, err := r.builder.Select("account_id", "course_id", "last_accessed").
		From("course_progress").
		Where(squirrel.Eq{"account_id": accountID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select progress sql: %w", err)
	}

	var progress domain.CourseProgress
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&progress.AccountID,
		&progress.CourseID,
		&progress.LastAccessed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select progress: %w", err)
	}

	completions, err := r.completionsByCourse(ctx, accountID, []string{courseID})
	if err != nil {
		return nil, err
	}
	progress.CompletedLessons = completions[courseID]

	return &progress, nil
}

// ListProgress returns progress for every course the account touched.
func (r *ProgressRepository) ListProgress(ctx context.Context, accountID string) ([]domain.CourseProgress, error) {
	stmt, args, err := r.builder.Select("account_id", "course_id", "last_accessed").
		From("course_progress").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("last_accessed DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list progress sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var entries []domain.CourseProgress
	var courseIDs []string
	for rows.Next() {
		var progress domain.CourseProgress
		if err := rows.Scan(&progress.AccountID, &progress.CourseID, &progress.LastAccessed); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		entries = append(entries, progress)
		courseIDs = append(courseIDs, progress.CourseID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}

	if len(courseIDs) == 0 {
		return entries, nil
	}

	completions, err := r.completionsByCourse(ctx, accountID, courseIDs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].CompletedLessons = completions[entries[i].CourseID]
	}

	return entries, nil
}

func (r *ProgressRepository) completionsByCourse(ctx context.Context, accountID string, courseIDs []string) (map[string][]int, error) {
	stmt, args, err := r.builder.Select("course_id", "lesson_index").
		From("lesson_completions").
		Where(squirrel.Eq{"account_id": accountID, "course_id": courseIDs}).
		OrderBy("course_id", "lesson_index").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select completions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	completions := make(map[string][]int, len(courseIDs))
	for rows.Next() {
		var courseID string
		var lessonIndex int
		if err := rows.Scan(&courseID, &lessonIndex); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions[courseID] = append(completions[courseID], lessonIndex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}

	return completions, nil
}
