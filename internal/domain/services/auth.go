package services

import (
	"context"

	"coursehub/internal/domain/models"
)

// TenantAuthorizer checks whether an actor may act on a community's data.
// Current implementation: membership-based (the actor's token names the community).
//
// Services call the authorizer before mutating tenant-owned resources.
type TenantAuthorizer interface {
	// CanManageCommunity checks the actor acts for communityID
	CanManageCommunity(ctx context.Context, actor *models.Actor, communityID string) error
}
