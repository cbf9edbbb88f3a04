package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coursehub/internal/domain"
	"coursehub/internal/domain/models"
	courseModels "coursehub/internal/domain/models/course"
	"coursehub/internal/domain/repositories"
	courseRepo "coursehub/internal/domain/repositories/course"
	"coursehub/internal/domain/services"
	courseSvc "coursehub/internal/domain/services/course"
)

// courseService implements the CourseService interface
type courseService struct {
	courseRepo    courseRepo.CourseRepository
	communityRepo courseRepo.CommunityRepository
	txManager     repositories.TransactionManager
	converter     courseSvc.ChapterConverter
	authorizer    services.TenantAuthorizer
	logger        *slog.Logger
}

// NewCourseService creates a new course service
func NewCourseService(
	courseRepo courseRepo.CourseRepository,
	communityRepo courseRepo.CommunityRepository,
	txManager repositories.TransactionManager,
	converter courseSvc.ChapterConverter,
	authorizer services.TenantAuthorizer,
	logger *slog.Logger,
) courseSvc.CourseService {
	return &courseService{
		courseRepo:    courseRepo,
		communityRepo: communityRepo,
		txManager:     txManager,
		converter:     converter,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// CreateCourse resolves the tenant, converts rich text, assigns an order and persists
func (s *courseService) CreateCourse(ctx context.Context, actor *models.Actor, req *courseSvc.CreateCourseRequest) (*courseModels.Course, error) {
	if actor == nil || actor.UserID == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}

	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	// Tenant: explicit payload field, then the actor's own community
	communityID := strings.TrimSpace(req.CommunityID)
	if communityID == "" {
		communityID = actor.CommunityID
	}
	if communityID == "" {
		return nil, domain.NewValidationError("no valid community")
	}
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("no valid community")
		}
		return nil, err
	}
	if err := s.authorizer.CanManageCommunity(ctx, actor, communityID); err != nil {
		return nil, err
	}

	status := courseModels.StatusDraft
	if req.Status == courseModels.StatusPublished {
		status = courseModels.StatusPublished
	}

	now := time.Now()
	course := &courseModels.Course{
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Category:         req.Category,
		TargetAudience:   req.TargetAudience,
		ContentType:      req.ContentType,
		Status:           status,
		Thumbnail:        req.Thumbnail,
		InstructorID:     actor.UserID,
		CommunityID:      communityID,
		Students:         []string{},
		Price:            req.Price,
		IsFree:           req.IsFree,
		Tags:             nonNilStrings(req.Tags),
		Requirements:     nonNilStrings(req.Requirements),
		LearningOutcomes: nonNilStrings(req.LearningOutcomes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if status == courseModels.StatusPublished {
		course.PublishedAt = &now
	}

	// Rendering happens before the transaction so the order lock is held briefly
	course.Chapters = s.prepareChapters(ctx, actor, course, req.Chapters)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if req.Order != nil {
			course.Order = *req.Order
		} else {
			next, err := s.courseRepo.NextOrder(txCtx, communityID)
			if err != nil {
				return err
			}
			course.Order = next
		}
		return s.courseRepo.Create(txCtx, course)
	})
	if err != nil {
		return nil, err
	}

	// Re-read so the response carries the joined community name
	created, err := s.courseRepo.GetByID(ctx, course.ID)
	if err != nil {
		s.logger.Warn("failed to reload created course", "id", course.ID, "error", err)
		created = course
	}

	s.logger.Info("course created",
		"id", created.ID,
		"community_id", communityID,
		"instructor_id", actor.UserID,
		"status", created.Status,
		"order", created.Order,
		"chapters", len(created.Chapters),
	)

	return created, nil
}

// ListCourses returns tenant-scoped courses, or the published catalog in discovery mode
func (s *courseService) ListCourses(ctx context.Context, req *courseSvc.ListCoursesRequest) ([]courseModels.Course, error) {
	if req.Status != "" && !req.Status.IsValid() {
		return nil, &domain.ValidationError{
			Message: "invalid list filter",
			Fields:  map[string]string{"status": "must be one of draft, published, archived"},
		}
	}

	filter := &courseModels.ListFilter{
		Category:     req.Category,
		InstructorID: req.InstructorID,
	}

	switch {
	case req.Discovery:
		filter.PublishedOnly = true
	case req.CommunityID != "":
		filter.CommunityID = req.CommunityID
		filter.Status = req.Status
	default:
		// Without a tenant there is nothing the caller may see
		return []courseModels.Course{}, nil
	}

	return s.courseRepo.List(ctx, filter)
}

// GetCourse retrieves one course by ID
func (s *courseService) GetCourse(ctx context.Context, id string) (*courseModels.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// UpdateCourse applies a partial update to a course owned by the actor's community
func (s *courseService) UpdateCourse(ctx context.Context, actor *models.Actor, id string, req *courseSvc.UpdateCourseRequest) (*courseModels.Course, error) {
	course, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.TargetAudience != nil {
		course.TargetAudience = *req.TargetAudience
	}
	if req.ContentType != nil {
		course.ContentType = *req.ContentType
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.IsFree != nil {
		course.IsFree = *req.IsFree
	}
	if req.Tags != nil {
		course.Tags = nonNilStrings(*req.Tags)
	}
	if req.Requirements != nil {
		course.Requirements = nonNilStrings(*req.Requirements)
	}
	if req.LearningOutcomes != nil {
		course.LearningOutcomes = nonNilStrings(*req.LearningOutcomes)
	}
	if req.Order != nil {
		course.Order = *req.Order
	}
	if req.Status != nil {
		if err := applyStatus(course, *req.Status, now); err != nil {
			return nil, err
		}
	}
	if req.Chapters != nil {
		course.Chapters = s.prepareChapters(ctx, actor, course, *req.Chapters)
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course updated",
		"id", course.ID,
		"community_id", course.CommunityID,
		"status", course.Status,
		"chapters_replaced", req.Chapters != nil,
	)

	return course, nil
}

// ArchiveCourse soft-deletes a course. Archiving an archived course is a no-op.
func (s *courseService) ArchiveCourse(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error) {
	course, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if course.Status == courseModels.StatusArchived {
		return course, nil
	}

	if err := applyStatus(course, courseModels.StatusArchived, time.Now()); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course archived",
		"id", course.ID,
		"community_id", course.CommunityID,
	)

	return course, nil
}

// PublishCourse publishes a course and runs its chapters through conversion again
func (s *courseService) PublishCourse(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error) {
	course, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := applyStatus(course, courseModels.StatusPublished, now); err != nil {
		return nil, err
	}
	course.PublishedAt = &now
	course.Chapters = s.prepareChapters(ctx, actor, course, course.Chapters)

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course published",
		"id", course.ID,
		"community_id", course.CommunityID,
	)

	return course, nil
}

// ReorderCourses assigns orders 1..N to the listed courses in the supplied sequence
func (s *courseService) ReorderCourses(ctx context.Context, actor *models.Actor, req *courseSvc.ReorderRequest) ([]courseModels.Course, error) {
	if err := validateReorderRequest(req); err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageCommunity(ctx, actor, req.CommunityID); err != nil {
		return nil, err
	}

	ids := make([]string, len(req.CourseOrder))
	for i, entry := range req.CourseOrder {
		ids[i] = entry.ID
	}

	found, err := s.courseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]courseModels.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	// Every id must exist and belong to the tenant before anything is written
	ordered := make([]courseModels.Course, len(ids))
	for i, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("course %s not found", id)}
		}
		if c.CommunityID != req.CommunityID {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("course %s does not belong to community %s", id, req.CommunityID)}
		}
		c.Order = i + 1
		ordered[i] = c
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, c := range ordered {
			if err := s.courseRepo.SetOrder(txCtx, c.ID, c.Order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("courses reordered",
		"community_id", req.CommunityID,
		"count", len(ordered),
	)

	return ordered, nil
}

// EnrollStudent adds a student to a course. Enrolling twice is a no-op.
func (s *courseService) EnrollStudent(ctx context.Context, courseID, studentID string) (*courseModels.Course, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, &domain.ValidationError{
			Message: "invalid enrollment",
			Fields:  map[string]string{"studentId": "cannot be blank"},
		}
	}

	course, err := s.courseRepo.AddStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("student enrolled",
		"course_id", courseID,
		"student_id", studentID,
		"students", len(course.Students),
	)

	return course, nil
}

// RateCourse folds a rating into the course average
func (s *courseService) RateCourse(ctx context.Context, courseID string, req *courseSvc.RateRequest) (*courseModels.Course, error) {
	if err := validateRateRequest(req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.AddRating(ctx, courseID, req.Rating)
	if err != nil {
		return nil, err
	}

	s.logger.Info("course rated",
		"course_id", courseID,
		"rating", req.Rating,
		"average", course.Rating,
		"total_ratings", course.TotalRatings,
	)

	return course, nil
}

// getOwned loads a course and checks the actor's community owns it
func (s *courseService) getOwned(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageCommunity(ctx, actor, course.CommunityID); err != nil {
		return nil, err
	}
	return course, nil
}

// prepareChapters normalizes item defaults then converts rich text to PDFs.
// Generated files belong to the course's community.
func (s *courseService) prepareChapters(ctx context.Context, actor *models.Actor, course *courseModels.Course, chapters []courseModels.Chapter) []courseModels.Chapter {
	normalized := NormalizeChapters(chapters)

	owner := courseModels.FileOwner{CommunityID: course.CommunityID, UploadedBy: actor.UserID}
	converted, report := s.converter.ConvertChapters(ctx, owner, normalized)
	if report.Candidates > 0 {
		s.logger.Info("content conversion finished",
			"course_id", course.ID,
			"candidates", report.Candidates,
			"converted", report.Converted,
			"failed", report.Failed,
		)
	}
	return converted
}

// applyStatus moves the course through the lifecycle state machine and stamps
// the matching timestamp on first entry into a state.
func applyStatus(course *courseModels.Course, next courseModels.Status, now time.Time) error {
	if !course.Status.CanTransitionTo(next) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("cannot change course status from %s to %s", course.Status, next),
			ResourceType: "course",
			ResourceID:   course.ID,
		}
	}
	if course.Status == next {
		return nil
	}

	course.Status = next
	switch next {
	case courseModels.StatusPublished:
		if course.PublishedAt == nil {
			course.PublishedAt = &now
		}
	case courseModels.StatusArchived:
		course.ArchivedAt = &now
	}
	return nil
}
