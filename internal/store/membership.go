package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
)

// MembershipStore reads group memberships. Memberships are managed elsewhere;
// this service only checks them.
type MembershipStore interface {
	// Get returns the membership of a user in a group.
	// Returns ErrMembershipNotFound if the user was never invited.
	Get(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error)
}
