package domain

import "github.com/google/uuid"

// UserSummary is the public view of a user, attached to task relations so
// clients can show who reacted.
type UserSummary struct {
	ID          uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}
