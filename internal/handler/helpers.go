package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"coursehub/internal/domain"
	"coursehub/internal/domain/models"
	"coursehub/internal/httputil"

	"github.com/google/uuid"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		httpErr       domain.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Fields) > 0 {
			httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Message, map[string]interface{}{
				"errors": validationErr.Fields,
			})
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &conflictErr):
		extras := map[string]interface{}{}
		if conflictErr.ResourceID != "" {
			extras["resourceType"] = conflictErr.ResourceType
			extras["resourceId"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Message, extras)
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &httpErr) && httpErr.StatusCode() < 500:
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireActor returns the authenticated caller or writes a 401
func requireActor(w http.ResponseWriter, r *http.Request) (*models.Actor, bool) {
	actor := httputil.GetActor(r)
	if actor == nil || actor.UserID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return actor, true
}

// pathUUID reads a UUID path value or writes a 400
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name+" format")
		return "", false
	}
	return id, true
}
