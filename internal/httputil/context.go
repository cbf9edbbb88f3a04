package httputil

import (
	"context"
	"net/http"

	"coursehub/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	actorKey contextKey = "actor"
)

// WithActor adds the authenticated actor to the request context
func WithActor(r *http.Request, actor *models.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), actorKey, actor)
	return r.WithContext(ctx)
}

// GetActor retrieves the actor from context, nil for anonymous requests
func GetActor(r *http.Request) *models.Actor {
	actor, _ := r.Context().Value(actorKey).(*models.Actor)
	return actor
}

// GetUserID returns the authenticated user's ID, empty for anonymous requests
func GetUserID(r *http.Request) string {
	if actor := GetActor(r); actor != nil {
		return actor.UserID
	}
	return ""
}
