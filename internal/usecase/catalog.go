package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/core/port"
	"github.com/okunev/learnhub/internal/repository"
)

// ErrCourseNotFound indicates no course matches the given identifier.
var ErrCourseNotFound = errors.New("course not found")

// CatalogService exposes read access to the course catalog.
type CatalogService struct {
	courses port.CourseRepository
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(courses port.CourseRepository) *CatalogService {
	return &CatalogService{courses: courses}
}

// ListCourses returns all published courses, newest first.
func (s *CatalogService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.courses.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetCourse returns a single course by id.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}
