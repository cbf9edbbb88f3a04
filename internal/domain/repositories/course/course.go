package course

import (
	"context"

	models "coursehub/internal/domain/models/course"
)

// CourseRepository defines data access operations for courses
type CourseRepository interface {
	// Create inserts a course and fills in its generated ID and timestamps
	Create(ctx context.Context, course *models.Course) error

	// GetByID retrieves a course by ID regardless of status (archived included)
	GetByID(ctx context.Context, id string) (*models.Course, error)

	// GetByIDs retrieves every course whose ID is in ids. Missing IDs are simply absent.
	GetByIDs(ctx context.Context, ids []string) ([]models.Course, error)

	// List retrieves courses matching the filter, ordered by order ASC, created_at DESC
	List(ctx context.Context, filter *models.ListFilter) ([]models.Course, error)

	// Update overwrites the mutable fields of a course and bumps updated_at.
	// Instructor, community and students are never written by this path.
	Update(ctx context.Context, course *models.Course) error

	// NextOrder returns max(order)+1 within a community.
	// Inside a transaction it also serializes concurrent callers for that community.
	NextOrder(ctx context.Context, communityID string) (int, error)

	// SetOrder assigns the order of a single course
	SetOrder(ctx context.Context, id string, order int) error

	// AddStudent appends studentID to the course if not already enrolled
	AddStudent(ctx context.Context, id, studentID string) (*models.Course, error)

	// AddRating folds a rating into the running mean and increments the count
	AddRating(ctx context.Context, id string, rating float64) (*models.Course, error)
}

// CommunityRepository defines the small slice of community data the course
// pipeline needs
type CommunityRepository interface {
	// GetByID retrieves a community by ID
	GetByID(ctx context.Context, id string) (*models.Community, error)

	// Create inserts a community (seed and admin tooling)
	Create(ctx context.Context, community *models.Community) error
}
