package port

import (
	"context"

	"github.com/okunev/learnhub/internal/core/domain"
)

// CourseRepository exposes read access to the course catalog plus the
// enrollment counter side effect.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	// ListPublished returns published courses ordered by creation time,
	// most recent first.
	ListPublished(ctx context.Context) ([]domain.Course, error)
	// IncrementStudents bumps the student counter by one.
	IncrementStudents(ctx context.Context, id string) error
}
