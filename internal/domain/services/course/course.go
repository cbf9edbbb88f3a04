package course

import (
	"context"

	"coursehub/internal/domain/models"
	courseModels "coursehub/internal/domain/models/course"
)

// CreateCourseRequest is the authoring payload for a new course
type CreateCourseRequest struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Category         string                 `json:"category"`
	TargetAudience   string                 `json:"targetAudience"`
	ContentType      string                 `json:"contentType"`
	Status           courseModels.Status    `json:"status"`
	Thumbnail        string                 `json:"thumbnail"`
	Chapters         []courseModels.Chapter `json:"chapters"`
	CommunityID      string                 `json:"community"`
	Price            float64                `json:"price"`
	IsFree           bool                   `json:"isFree"`
	Tags             []string               `json:"tags"`
	Requirements     []string               `json:"requirements"`
	LearningOutcomes []string               `json:"learningOutcomes"`
	Order            *int                   `json:"order"`
}

// UpdateCourseRequest carries a partial update. Nil/absent fields are left alone.
// Instructor, community and students cannot be changed through this path and are
// absent from the payload shape.
type UpdateCourseRequest struct {
	Title            *string                 `json:"title"`
	Description      *string                 `json:"description"`
	Category         *string                 `json:"category"`
	TargetAudience   *string                 `json:"targetAudience"`
	ContentType      *string                 `json:"contentType"`
	Status           *courseModels.Status    `json:"status"`
	Thumbnail        *string                 `json:"thumbnail"` // Empty string clears
	Chapters         *[]courseModels.Chapter `json:"chapters"`
	Price            *float64                `json:"price"`
	IsFree           *bool                   `json:"isFree"`
	Tags             *[]string               `json:"tags"`
	Requirements     *[]string               `json:"requirements"`
	LearningOutcomes *[]string               `json:"learningOutcomes"`
	Order            *int                    `json:"order"`
}

// ListCoursesRequest mirrors the list query string
type ListCoursesRequest struct {
	CommunityID  string
	Status       courseModels.Status
	Category     string
	InstructorID string
	Discovery    bool
}

// ReorderEntry is one element of a reorder request
type ReorderEntry struct {
	ID string `json:"id"`
}

// ReorderRequest assigns orders 1..N to the listed courses in sequence
type ReorderRequest struct {
	CourseOrder []ReorderEntry `json:"courseOrder"`
	CommunityID string         `json:"communityId"`
}

// RateRequest submits one rating
type RateRequest struct {
	Rating float64 `json:"rating"`
}

// CourseService defines the authoring and lifecycle operations over courses
type CourseService interface {
	// CreateCourse resolves the tenant, assigns an order, converts rich text and persists
	CreateCourse(ctx context.Context, actor *models.Actor, req *CreateCourseRequest) (*courseModels.Course, error)

	// ListCourses returns tenant-scoped courses, or published courses in discovery mode.
	// Without a community filter and outside discovery mode the result is empty.
	ListCourses(ctx context.Context, req *ListCoursesRequest) ([]courseModels.Course, error)

	// GetCourse retrieves one course by ID
	GetCourse(ctx context.Context, id string) (*courseModels.Course, error)

	// UpdateCourse applies a partial update owned by the actor's community
	UpdateCourse(ctx context.Context, actor *models.Actor, id string, req *UpdateCourseRequest) (*courseModels.Course, error)

	// ArchiveCourse soft-deletes a course
	ArchiveCourse(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error)

	// PublishCourse publishes a course and re-runs content conversion
	PublishCourse(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error)

	// ReorderCourses assigns sequential orders within a community
	ReorderCourses(ctx context.Context, actor *models.Actor, req *ReorderRequest) ([]courseModels.Course, error)

	// EnrollStudent adds a student to a course (idempotent)
	EnrollStudent(ctx context.Context, courseID, studentID string) (*courseModels.Course, error)

	// RateCourse folds a rating into the course average
	RateCourse(ctx context.Context, courseID string, req *RateRequest) (*courseModels.Course, error)
}
