package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/repository"
)

func newCourseRepoWithMock(t *testing.T) (*CourseRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return NewCourseRepository(nil).WithExecutor(mock), mock
}

func courseColumns() []string {
	return []string{
		"id", "title", "description", "instructor", "duration", "difficulty",
		"category", "thumbnail", "price", "rating", "students_count", "tags",
		"is_published", "created_at",
	}
}

func TestCourseRepository_GetByID(t *testing.T) {
	repo, mock := newCourseRepoWithMock(t)

	createdAt := time.Now().UTC()

	mock.ExpectQuery(`SELECT .*FROM courses`).
		WithArgs("course-1").
		WillReturnRows(pgxmock.NewRows(courseColumns()).AddRow(
			"course-1", "Go Fundamentals", "From zero to gopher", "Rob",
			"6h", domain.DifficultyBeginner, "programming", "https://cdn.example.com/go.png",
			49.99, 4.7, 128, []string{"go", "backend"}, true, createdAt,
		))
	mock.ExpectQuery(`SELECT .*FROM lessons`).
		WithArgs("course-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"course_id", "position", "title", "duration", "video_id", "description", "resources",
		}).
			AddRow("course-1", 0, "Hello, Go", "10m", "vid-1", "Setup and first program", []string{"https://go.dev/tour"}).
			AddRow("course-1", 1, "Types and structs", "25m", "vid-2", nil, nil))

	course, err := repo.GetByID(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if course.Title != "Go Fundamentals" {
		t.Fatalf("unexpected title %s", course.Title)
	}
	if course.LessonCount() != 2 {
		t.Fatalf("expected 2 lessons, got %d", course.LessonCount())
	}
	if course.Lessons[0].Position != 0 || course.Lessons[1].Position != 1 {
		t.Fatal("expected lessons ordered by position")
	}
	if course.Lessons[1].Description != "" {
		t.Fatal("expected empty description for null column")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCourseRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newCourseRepoWithMock(t)

	mock.ExpectQuery(`SELECT .*FROM courses`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(courseColumns()))

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCourseRepository_ListPublished(t *testing.T) {
	repo, mock := newCourseRepoWithMock(t)

	createdAt := time.Now().UTC()

	mock.ExpectQuery(`SELECT .*FROM courses`).
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows(courseColumns()).
			AddRow(
				"course-2", "Concurrency Patterns", "Channels in anger", "Ana",
				"4h", domain.DifficultyAdvanced, "programming", nil,
				79.00, 4.9, 52, []string{"go"}, true, createdAt,
			).
			AddRow(
				"course-1", "Go Fundamentals", "From zero to gopher", "Rob",
				"6h", domain.DifficultyBeginner, "programming", nil,
				49.99, 4.7, 128, []string{"go", "backend"}, true, createdAt.Add(-time.Hour),
			))
	mock.ExpectQuery(`SELECT .*FROM lessons`).
		WithArgs("course-2", "course-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"course_id", "position", "title", "duration", "video_id", "description", "resources",
		}).AddRow("course-1", 0, "Hello, Go", "10m", nil, nil, nil))

	courses, err := repo.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished returned error: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(courses))
	}
	if courses[0].ID != "course-2" {
		t.Fatalf("expected newest course first, got %s", courses[0].ID)
	}
	if courses[0].Thumbnail != "" {
		t.Fatal("expected empty thumbnail for null column")
	}
	if len(courses[1].Lessons) != 1 {
		t.Fatalf("expected lessons attached to course-1, got %d", len(courses[1].Lessons))
	}
	if courses[0].Lessons != nil {
		t.Fatal("expected no lessons for course-2")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCourseRepository_IncrementStudents(t *testing.T) {
	repo, mock := newCourseRepoWithMock(t)

	mock.ExpectExec(`UPDATE courses`).
		WithArgs("course-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.IncrementStudents(context.Background(), "course-1"); err != nil {
		t.Fatalf("IncrementStudents returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE courses`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.IncrementStudents(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
