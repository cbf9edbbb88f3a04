package course

import (
	"time"
)

// Status is the lifecycle state of a course
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Course content types
const (
	ContentTypeVideo = "video"
	ContentTypeText  = "text"
	ContentTypePDF   = "pdf"
)

// Course is the authored unit owned by a community (tenant).
// Chapters are embedded and have no identity outside the course.
type Course struct {
	ID               string     `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Category         string     `json:"category" db:"category"`
	TargetAudience   string     `json:"targetAudience" db:"target_audience"`
	ContentType      string     `json:"contentType" db:"content_type"`
	Status           Status     `json:"status" db:"status"`
	Thumbnail        string     `json:"thumbnail" db:"thumbnail"`
	Chapters         []Chapter  `json:"chapters" db:"chapters"`
	InstructorID     string     `json:"instructor" db:"instructor_id"`
	CommunityID      string     `json:"community" db:"community_id"`
	CommunityName    string     `json:"communityName,omitempty"` // Populated on read, not stored
	Students         []string   `json:"students" db:"students"`
	Rating           float64    `json:"rating" db:"rating"`
	TotalRatings     int        `json:"totalRatings" db:"total_ratings"`
	Price            float64    `json:"price" db:"price"`
	IsFree           bool       `json:"isFree" db:"is_free"`
	Tags             []string   `json:"tags" db:"tags"`
	Requirements     []string   `json:"requirements" db:"requirements"`
	LearningOutcomes []string   `json:"learningOutcomes" db:"learning_outcomes"`
	Order            int        `json:"order" db:"sort_order"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	ArchivedAt       *time.Time `json:"archivedAt,omitempty" db:"archived_at"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasStudent reports whether studentID is enrolled
func (c *Course) HasStudent(studentID string) bool {
	for _, s := range c.Students {
		if s == studentID {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next.
// draft -> published -> archived, draft -> archived. Nothing leaves archived.
// Staying in the same state is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusPublished || next == StatusArchived
	case StatusPublished:
		return next == StatusArchived
	}
	return false
}

// RunningMean folds one more rating into an average over count ratings.
func RunningMean(mean float64, count int, rating float64) float64 {
	return (mean*float64(count) + rating) / float64(count+1)
}

// ListFilter selects courses for listing.
// Repositories return nothing when neither CommunityID nor PublishedOnly is set.
type ListFilter struct {
	CommunityID   string
	Status        Status // Empty = every non-archived status
	Category      string
	InstructorID  string
	PublishedOnly bool // Discovery: published courses across all communities
}
