package auth

import (
	"context"
	"fmt"

	"coursehub/internal/domain"
	"coursehub/internal/domain/models"
)

// MembershipAuthorizer implements TenantAuthorizer using the community the
// actor's token was issued for. A user may manage a community's courses only
// while acting for that community.
//
// Role-based rules (e.g. instructors vs. moderators) can be layered on top by
// wrapping this authorizer.
type MembershipAuthorizer struct{}

// NewMembershipAuthorizer creates a new membership-based authorizer
func NewMembershipAuthorizer() *MembershipAuthorizer {
	return &MembershipAuthorizer{}
}

// CanManageCommunity checks the actor acts for communityID
func (a *MembershipAuthorizer) CanManageCommunity(ctx context.Context, actor *models.Actor, communityID string) error {
	if actor == nil || actor.UserID == "" {
		return &domain.UnauthorizedError{Message: "authentication required"}
	}
	if communityID == "" || actor.CommunityID != communityID {
		return fmt.Errorf("access denied to community %s: %w", communityID, domain.ErrForbidden)
	}
	return nil
}
