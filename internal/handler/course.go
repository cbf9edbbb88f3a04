package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
	"coursehub/internal/httputil"
)

// CourseHandler handles course authoring and lifecycle requests
type CourseHandler struct {
	courseService courseSvc.CourseService
	logger        *slog.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService courseSvc.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger,
	}
}

// updateCoursePayload lets a JSON null thumbnail clear the field
type updateCoursePayload struct {
	courseSvc.UpdateCourseRequest
	Thumbnail httputil.OptionalString `json:"thumbnail"`
}

// CreateCourse creates a course in the caller's community
// POST /api/courses
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req courseSvc.CreateCourseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	course, err := h.courseService.CreateCourse(r.Context(), actor, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, course)
}

// ListCourses lists courses for a community, or the published catalog
// GET /api/courses?community=&status=&category=&instructor=&discovery=
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	discovery := false
	if raw := q.Get("discovery"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "discovery must be true or false")
			return
		}
		discovery = parsed
	}

	courses, err := h.courseService.ListCourses(r.Context(), &courseSvc.ListCoursesRequest{
		CommunityID:  q.Get("community"),
		Status:       courseModels.Status(q.Get("status")),
		Category:     q.Get("category"),
		InstructorID: q.Get("instructor"),
		Discovery:    discovery,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse retrieves a course by ID
// GET /api/courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetCourse(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// UpdateCourse applies a partial update
// PUT /api/courses/{id}
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var payload updateCoursePayload
	if err := httputil.ParseJSON(w, r, &payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req := payload.UpdateCourseRequest
	req.Thumbnail = payload.Thumbnail.Patch()

	course, err := h.courseService.UpdateCourse(r.Context(), actor, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// ArchiveCourse soft-deletes a course
// DELETE /api/courses/{id}
func (h *CourseHandler) ArchiveCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	course, err := h.courseService.ArchiveCourse(r.Context(), actor, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// PublishCourse publishes a course
// PATCH /api/courses/{id}/publish
func (h *CourseHandler) PublishCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	course, err := h.courseService.PublishCourse(r.Context(), actor, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// ReorderCourses assigns orders 1..N within a community
// PATCH /api/courses/reorder
func (h *CourseHandler) ReorderCourses(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req courseSvc.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	courses, err := h.courseService.ReorderCourses(r.Context(), actor, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, courses)
}

// EnrollStudent enrolls a student (idempotent)
// POST /api/courses/{courseId}/enroll/{studentId}
func (h *CourseHandler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	courseID, ok := pathUUID(w, r, "courseId")
	if !ok {
		return
	}

	course, err := h.courseService.EnrollStudent(r.Context(), courseID, r.PathValue("studentId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// RateCourse submits a rating
// POST /api/courses/{courseId}/rate
func (h *CourseHandler) RateCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	courseID, ok := pathUUID(w, r, "courseId")
	if !ok {
		return
	}

	var req courseSvc.RateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	course, err := h.courseService.RateCourse(r.Context(), courseID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}
