package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestListCoursesReturnsOnlyPublished(t *testing.T) {
	draft := publishedCourse("c2", 2)
	draft.IsPublished = false

	svc := NewCatalogService(newFakeCourseRepository(publishedCourse("c1", 3), draft))

	courses, err := svc.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != "c1" {
		t.Fatalf("expected only published course c1, got %+v", courses)
	}
}

func TestGetCourse(t *testing.T) {
	svc := NewCatalogService(newFakeCourseRepository(publishedCourse("c1", 3)))

	course, err := svc.GetCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if course.LessonCount() != 3 {
		t.Fatalf("expected 3 lessons, got %d", course.LessonCount())
	}

	if _, err := svc.GetCourse(context.Background(), "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}
