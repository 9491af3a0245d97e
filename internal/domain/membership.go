package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupMembership links a user to a group. Only accepted memberships grant
// access to the group's tasks; pending invitations do not.
type GroupMembership struct {
	GroupID   uuid.UUID `json:"group_id"`
	UserID    uuid.UUID `json:"user_id"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantsAccess reports whether the membership lets its user see the group's tasks.
func (m *GroupMembership) GrantsAccess() bool {
	return m != nil && m.Accepted
}
