package config

const (
	// MaxCourseTitleLength is the maximum length for course titles.
	MaxCourseTitleLength = 200

	// MaxCourseDescriptionLength bounds the course description.
	MaxCourseDescriptionLength = 5000

	// MaxCategoryLength bounds category and target audience labels.
	MaxCategoryLength = 100

	// MaxListItems bounds tags, requirements and learning outcomes.
	MaxListItems = 50

	// MaxChapters bounds chapters per course. Each chapter's items are embedded
	// in the course document, so this keeps a single write reasonably sized.
	MaxChapters = 200

	// MaxReorderBatch bounds the number of ids in a single reorder request.
	MaxReorderBatch = 1000

	// MinRating and MaxRating bound a single submitted rating.
	MinRating = 1
	MaxRating = 5
)
