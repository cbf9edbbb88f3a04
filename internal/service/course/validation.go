package course

import (
	"errors"
	"fmt"

	"coursehub/internal/config"
	"coursehub/internal/domain"
	models "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	courseContentTypes = []interface{}{models.ContentTypeVideo, models.ContentTypeText, models.ContentTypePDF}
	createStatuses     = []interface{}{models.StatusDraft, models.StatusPublished}
	allStatuses        = []interface{}{models.StatusDraft, models.StatusPublished, models.StatusArchived}
)

func validateCreateRequest(req *courseSvc.CreateCourseRequest) error {
	return toValidationError("invalid course", validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxCourseTitleLength),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxCourseDescriptionLength)),
		validation.Field(&req.Category, validation.RuneLength(0, config.MaxCategoryLength)),
		validation.Field(&req.TargetAudience, validation.RuneLength(0, config.MaxCategoryLength)),
		validation.Field(&req.ContentType, validation.In(courseContentTypes...)),
		validation.Field(&req.Status, validation.In(createStatuses...)),
		validation.Field(&req.Chapters, validation.Length(0, config.MaxChapters)),
		validation.Field(&req.Price, validation.Min(0.0)),
		validation.Field(&req.Tags, validation.Length(0, config.MaxListItems)),
		validation.Field(&req.Requirements, validation.Length(0, config.MaxListItems)),
		validation.Field(&req.LearningOutcomes, validation.Length(0, config.MaxListItems)),
		validation.Field(&req.Order, validation.Min(0)),
	))
}

func validateUpdateRequest(req *courseSvc.UpdateCourseRequest) error {
	return toValidationError("invalid course update", validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.RuneLength(1, config.MaxCourseTitleLength),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxCourseDescriptionLength)),
		validation.Field(&req.Category, validation.RuneLength(0, config.MaxCategoryLength)),
		validation.Field(&req.TargetAudience, validation.RuneLength(0, config.MaxCategoryLength)),
		validation.Field(&req.ContentType, validation.In(courseContentTypes...)),
		validation.Field(&req.Status, validation.In(allStatuses...)),
		validation.Field(&req.Chapters, validation.Length(0, config.MaxChapters)),
		validation.Field(&req.Price, validation.Min(0.0)),
		validation.Field(&req.Tags, validation.Length(0, config.MaxListItems)),
		validation.Field(&req.Requirements, validation.Length(0, config.MaxListItems)),
		validation.Field(&req.LearningOutcomes, validation.Length(0, config.MaxListItems)),
		validation.Field(&req.Order, validation.Min(0)),
	))
}

func validateRateRequest(req *courseSvc.RateRequest) error {
	return toValidationError("invalid rating", validation.ValidateStruct(req,
		validation.Field(&req.Rating,
			validation.Required,
			validation.Min(float64(config.MinRating)),
			validation.Max(float64(config.MaxRating)),
		),
	))
}

// validateReorderRequest checks shape only; existence and ownership are
// resolved against the repository afterwards.
func validateReorderRequest(req *courseSvc.ReorderRequest) error {
	if req.CommunityID == "" {
		return &domain.ValidationError{
			Message: "invalid reorder request",
			Fields:  map[string]string{"communityId": "cannot be blank"},
		}
	}
	if len(req.CourseOrder) == 0 {
		return &domain.ValidationError{
			Message: "invalid reorder request",
			Fields:  map[string]string{"courseOrder": "cannot be blank"},
		}
	}
	if len(req.CourseOrder) > config.MaxReorderBatch {
		return &domain.ValidationError{
			Message: "invalid reorder request",
			Fields:  map[string]string{"courseOrder": fmt.Sprintf("at most %d courses per request", config.MaxReorderBatch)},
		}
	}

	seen := make(map[string]struct{}, len(req.CourseOrder))
	for i, entry := range req.CourseOrder {
		key := fmt.Sprintf("courseOrder[%d].id", i)
		if entry.ID == "" {
			return &domain.ValidationError{
				Message: "invalid reorder request",
				Fields:  map[string]string{key: "cannot be blank"},
			}
		}
		if _, dup := seen[entry.ID]; dup {
			return &domain.ValidationError{
				Message: "invalid reorder request",
				Fields:  map[string]string{key: fmt.Sprintf("duplicate course %s", entry.ID)},
			}
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// toValidationError converts ozzo field errors into a domain.ValidationError.
// Internal ozzo errors (misconfigured rules) are passed through unchanged.
func toValidationError(message string, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			fields[field] = fieldErr.Error()
		}
		return &domain.ValidationError{Message: message, Fields: fields}
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("validate request: %w", err)
	}

	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
