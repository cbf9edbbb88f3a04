package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursehub/internal/domain"
	"coursehub/internal/domain/models"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
	"coursehub/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCourseID = "6f1d2c1e-7d0b-4b0a-9a35-2f4a3c0e9b11"

// fakeCourseService records the last call and returns canned results
type fakeCourseService struct {
	err error

	actor      *models.Actor
	create     *courseSvc.CreateCourseRequest
	update     *courseSvc.UpdateCourseRequest
	list       *courseSvc.ListCoursesRequest
	reorder    *courseSvc.ReorderRequest
	rate       *courseSvc.RateRequest
	id         string
	studentID  string
	lastMethod string
}

func (f *fakeCourseService) course() *courseModels.Course {
	return &courseModels.Course{ID: testCourseID, Title: "Intro", Status: courseModels.StatusDraft}
}

func (f *fakeCourseService) CreateCourse(ctx context.Context, actor *models.Actor, req *courseSvc.CreateCourseRequest) (*courseModels.Course, error) {
	f.lastMethod, f.actor, f.create = "create", actor, req
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

func (f *fakeCourseService) ListCourses(ctx context.Context, req *courseSvc.ListCoursesRequest) ([]courseModels.Course, error) {
	f.lastMethod, f.list = "list", req
	if f.err != nil {
		return nil, f.err
	}
	return []courseModels.Course{}, nil
}

func (f *fakeCourseService) GetCourse(ctx context.Context, id string) (*courseModels.Course, error) {
	f.lastMethod, f.id = "get", id
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

func (f *fakeCourseService) UpdateCourse(ctx context.Context, actor *models.Actor, id string, req *courseSvc.UpdateCourseRequest) (*courseModels.Course, error) {
	f.lastMethod, f.actor, f.id, f.update = "update", actor, id, req
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

func (f *fakeCourseService) ArchiveCourse(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error) {
	f.lastMethod, f.actor, f.id = "archive", actor, id
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

func (f *fakeCourseService) PublishCourse(ctx context.Context, actor *models.Actor, id string) (*courseModels.Course, error) {
	f.lastMethod, f.actor, f.id = "publish", actor, id
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

func (f *fakeCourseService) ReorderCourses(ctx context.Context, actor *models.Actor, req *courseSvc.ReorderRequest) ([]courseModels.Course, error) {
	f.lastMethod, f.actor, f.reorder = "reorder", actor, req
	if f.err != nil {
		return nil, f.err
	}
	return []courseModels.Course{*f.course()}, nil
}

func (f *fakeCourseService) EnrollStudent(ctx context.Context, courseID, studentID string) (*courseModels.Course, error) {
	f.lastMethod, f.id, f.studentID = "enroll", courseID, studentID
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

func (f *fakeCourseService) RateCourse(ctx context.Context, courseID string, req *courseSvc.RateRequest) (*courseModels.Course, error) {
	f.lastMethod, f.id, f.rate = "rate", courseID, req
	if f.err != nil {
		return nil, f.err
	}
	return f.course(), nil
}

var testActor = &models.Actor{UserID: "user-1", CommunityID: "community-1"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func courseMux(svc courseSvc.CourseService) *http.ServeMux {
	h := NewCourseHandler(svc, discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/courses", h.CreateCourse)
	mux.HandleFunc("GET /api/courses", h.ListCourses)
	mux.HandleFunc("PATCH /api/courses/reorder", h.ReorderCourses)
	mux.HandleFunc("GET /api/courses/{id}", h.GetCourse)
	mux.HandleFunc("PUT /api/courses/{id}", h.UpdateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", h.ArchiveCourse)
	mux.HandleFunc("PATCH /api/courses/{id}/publish", h.PublishCourse)
	mux.HandleFunc("POST /api/courses/{courseId}/enroll/{studentId}", h.EnrollStudent)
	mux.HandleFunc("POST /api/courses/{courseId}/rate", h.RateCourse)
	return mux
}

func serve(t *testing.T, mux http.Handler, method, target, body string, actor *models.Actor) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req = httputil.WithActor(req, actor)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestCreateCourse(t *testing.T) {
	t.Run("requires an actor", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodPost, "/api/courses", `{"title":"Intro"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.lastMethod)
	})

	t.Run("created", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodPost, "/api/courses",
			`{"title":"Intro","community":"community-1","chapters":[{"title":"One","videos":[]}]}`, testActor)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, testActor, svc.actor)
		assert.Equal(t, "Intro", svc.create.Title)
		assert.Equal(t, "community-1", svc.create.CommunityID)
		require.Len(t, svc.create.Chapters, 1)

		var got courseModels.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, testCourseID, got.ID)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(t, courseMux(&fakeCourseService{}), http.MethodPost, "/api/courses", `{"title":`, testActor)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation errors carry fields", func(t *testing.T) {
		svc := &fakeCourseService{err: &domain.ValidationError{
			Message: "invalid course",
			Fields:  map[string]string{"title": "cannot be blank"},
		}}
		rec := serve(t, courseMux(svc), http.MethodPost, "/api/courses", `{}`, testActor)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		problem := decodeProblem(t, rec)
		assert.Equal(t, "invalid course", problem["detail"])
		assert.Equal(t, map[string]interface{}{"title": "cannot be blank"}, problem["errors"])
	})

	t.Run("no valid community", func(t *testing.T) {
		svc := &fakeCourseService{err: domain.NewValidationError("no valid community")}
		rec := serve(t, courseMux(svc), http.MethodPost, "/api/courses", `{"title":"x"}`, testActor)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "no valid community", decodeProblem(t, rec)["detail"])
	})
}

func TestListCourses(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodGet,
			"/api/courses?community=c1&status=draft&category=art&instructor=u9&discovery=false", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, &courseSvc.ListCoursesRequest{
			CommunityID:  "c1",
			Status:       courseModels.StatusDraft,
			Category:     "art",
			InstructorID: "u9",
		}, svc.list)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("discovery", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodGet, "/api/courses?discovery=true", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, svc.list.Discovery)
	})

	t.Run("bad discovery flag", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodGet, "/api/courses?discovery=maybe", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, svc.list)
	})
}

func TestGetCourse(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodGet, "/api/courses/not-a-uuid", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.lastMethod)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeCourseService{err: &domain.NotFoundError{Message: "course not found"}}
		rec := serve(t, courseMux(svc), http.MethodGet, "/api/courses/"+testCourseID, "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("found", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodGet, "/api/courses/"+testCourseID, "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testCourseID, svc.id)
	})
}

func TestUpdateCourse(t *testing.T) {
	t.Run("null thumbnail clears", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodPut, "/api/courses/"+testCourseID,
			`{"title":"Renamed","thumbnail":null}`, testActor)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.update.Title)
		assert.Equal(t, "Renamed", *svc.update.Title)
		require.NotNil(t, svc.update.Thumbnail)
		assert.Equal(t, "", *svc.update.Thumbnail)
	})

	t.Run("absent thumbnail untouched", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodPut, "/api/courses/"+testCourseID, `{"title":"Renamed"}`, testActor)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.update.Thumbnail)
	})

	t.Run("thumbnail value", func(t *testing.T) {
		svc := &fakeCourseService{}
		rec := serve(t, courseMux(svc), http.MethodPut, "/api/courses/"+testCourseID,
			`{"thumbnail":"/uploads/1-123456789.png"}`, testActor)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.update.Thumbnail)
		assert.Equal(t, "/uploads/1-123456789.png", *svc.update.Thumbnail)
	})

	t.Run("other tenant is forbidden", func(t *testing.T) {
		svc := &fakeCourseService{err: &domain.ForbiddenError{Message: "course belongs to another community"}}
		rec := serve(t, courseMux(svc), http.MethodPut, "/api/courses/"+testCourseID, `{"title":"x"}`, testActor)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("illegal transition conflicts", func(t *testing.T) {
		svc := &fakeCourseService{err: &domain.ConflictError{Message: "cannot move archived course to draft", ResourceType: "course", ResourceID: testCourseID}}
		rec := serve(t, courseMux(svc), http.MethodPut, "/api/courses/"+testCourseID, `{"status":"draft"}`, testActor)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, testCourseID, decodeProblem(t, rec)["resourceId"])
	})
}

func TestLifecycleRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantMethod string
		wantStatus int
	}{
		{name: "archive", method: http.MethodDelete, target: "/api/courses/" + testCourseID, wantMethod: "archive", wantStatus: http.StatusOK},
		{name: "publish", method: http.MethodPatch, target: "/api/courses/" + testCourseID + "/publish", wantMethod: "publish", wantStatus: http.StatusOK},
		{name: "reorder", method: http.MethodPatch, target: "/api/courses/reorder", body: `{"communityId":"community-1","courseOrder":[{"id":"` + testCourseID + `"}]}`, wantMethod: "reorder", wantStatus: http.StatusOK},
		{name: "enroll", method: http.MethodPost, target: "/api/courses/" + testCourseID + "/enroll/student-7", wantMethod: "enroll", wantStatus: http.StatusOK},
		{name: "rate", method: http.MethodPost, target: "/api/courses/" + testCourseID + "/rate", body: `{"rating":4}`, wantMethod: "rate", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCourseService{}
			rec := serve(t, courseMux(svc), tt.method, tt.target, tt.body, testActor)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMethod, svc.lastMethod)
		})

		t.Run(tt.name+" anonymous", func(t *testing.T) {
			svc := &fakeCourseService{}
			rec := serve(t, courseMux(svc), tt.method, tt.target, tt.body, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, svc.lastMethod)
		})
	}
}

func TestReorderCourses_PassesPayload(t *testing.T) {
	svc := &fakeCourseService{}
	rec := serve(t, courseMux(svc), http.MethodPatch, "/api/courses/reorder",
		`{"communityId":"community-1","courseOrder":[{"id":"a"},{"id":"b"}]}`, testActor)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &courseSvc.ReorderRequest{
		CommunityID: "community-1",
		CourseOrder: []courseSvc.ReorderEntry{{ID: "a"}, {ID: "b"}},
	}, svc.reorder)
}

func TestEnrollStudent_PassesIDs(t *testing.T) {
	svc := &fakeCourseService{}
	rec := serve(t, courseMux(svc), http.MethodPost, "/api/courses/"+testCourseID+"/enroll/student-7", "", testActor)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testCourseID, svc.id)
	assert.Equal(t, "student-7", svc.studentID)
}

func TestHandleError_Internal(t *testing.T) {
	svc := &fakeCourseService{err: io.ErrUnexpectedEOF}
	rec := serve(t, courseMux(svc), http.MethodGet, "/api/courses/"+testCourseID, "", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeProblem(t, rec)["detail"])
}
