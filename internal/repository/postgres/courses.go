package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/repository"
)

// CourseRepository implements port.CourseRepository using PostgreSQL.
type CourseRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCourseRepository wires a PostgreSQL-backed course repository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithExecutor returns a repository instance operating over the supplied
// executor (a transaction or a mock).
func (r *CourseRepository) WithExecutor(exec pgExecutor) *CourseRepository {
	if exec == nil {
		return r
	}
	return &CourseRepository{
		pool:    r.pool,
		exec:    exec,
		builder: r.builder,
	}
}

// GetByID retrieves a course with its full lesson list, lessons ordered by
// position.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	stmt, args, err := r.selectCourses().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select course sql: %w", err)
	}

	course, err := r.scanCourse(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	lessons, err := r.lessonsByCourse(ctx, []string{course.ID})
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons[course.ID]

	return course, nil
}

// ListPublished returns every published course, newest first, lessons
// included.
func (r *CourseRepository) ListPublished(ctx context.Context) ([]domain.Course, error) {
	stmt, args, err := r.selectCourses().
		Where(squirrel.Eq{"is_published": true}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list courses sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	var ids []string
	for rows.Next() {
		course, err := r.scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
		ids = append(ids, course.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	if len(ids) == 0 {
		return courses, nil
	}

	lessons, err := r.lessonsByCourse(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Lessons = lessons[courses[i].ID]
	}

	return courses, nil
}

// IncrementStudents bumps the denormalized enrollment counter.
func (r *CourseRepository) IncrementStudents(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("courses").
		Set("students_count", squirrel.Expr("students_count + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment students sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("increment students: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return r.builder.Select(
		"id",
		"title",
		"description",
		"instructor",
		"duration",
		"difficulty",
		"category",
		"thumbnail",
		"price",
		"rating",
		"students_count",
		"tags",
		"is_published",
		"created_at",
	).From("courses")
}

func (r *CourseRepository) scanCourse(row pgx.Row) (*domain.Course, error) {
	var (
		course    domain.Course
		thumbnail sql.NullString
	)

	if err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Instructor,
		&course.Duration,
		&course.Difficulty,
		&course.Category,
		&thumbnail,
		&course.Price,
		&course.Rating,
		&course.StudentsCount,
		&course.Tags,
		&course.IsPublished,
		&course.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}

	if thumbnail.Valid {
		course.Thumbnail = thumbnail.String
	}

	return &course, nil
}

func (r *CourseRepository) lessonsByCourse(ctx context.Context, courseIDs []string) (map[string][]domain.Lesson, error) {
	stmt, args, err := r.builder.Select(
		"course_id",
		"position",
		"title",
		"duration",
		"video_id",
		"description",
		"resources",
	).
		From("lessons").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("course_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select lessons sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := make(map[string][]domain.Lesson, len(courseIDs))
	for rows.Next() {
		var (
			courseID string
			lesson   domain.Lesson
			videoID  sql.NullString
			desc     sql.NullString
		)
		if err := rows.Scan(
			&courseID,
			&lesson.Position,
			&lesson.Title,
			&lesson.Duration,
			&videoID,
			&desc,
			&lesson.Resources,
		); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		if videoID.Valid {
			lesson.VideoID = videoID.String
		}
		if desc.Valid {
			lesson.Description = desc.String
		}
		lessons[courseID] = append(lessons[courseID], lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}
