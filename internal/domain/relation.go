package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// ReactionNone is the reaction every relation starts with.
const ReactionNone = "no-reaction"

// Relation field limits.
const (
	MaxReactionLength = 50
	MaxCommentLength  = 1000
)

// TaskUserRelation is one user's stance on one task: whether they are assigned,
// how they reacted, and an optional comment. There is at most one per (task, user).
type TaskUserRelation struct {
	ID         uuid.UUID `json:"relation_id"`
	TaskID     uuid.UUID `json:"task_id"`
	UserID     uuid.UUID `json:"user_id"`
	IsAssigned bool      `json:"is_assigned"`
	Reaction   string    `json:"reaction"`
	Comment    *string   `json:"comment,omitempty"`

	// User is attached by list queries; it is nil when the user row is unavailable.
	User *UserSummary `json:"user,omitempty"`
}

// RelationPatch is a partial update of a relation.
type RelationPatch struct {
	Reaction   Optional[string]
	Comment    Optional[string]
	IsAssigned Optional[bool]
}

// NewTaskUserRelation creates a relation in its initial state.
func NewTaskUserRelation(taskID, userID uuid.UUID, isAssigned bool) (*TaskUserRelation, error) {
	rel := &TaskUserRelation{
		ID:         uuid.New(),
		TaskID:     taskID,
		UserID:     userID,
		IsAssigned: isAssigned,
		Reaction:   ReactionNone,
	}
	if err := rel.Validate(); err != nil {
		return nil, err
	}
	return rel, nil
}

// Validate checks the relation's invariants.
func (r *TaskUserRelation) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("relation_id", "cannot be empty", ErrInvalidID)
	}
	if r.TaskID == uuid.Nil {
		return NewValidationError("task_id", "cannot be empty", ErrInvalidID)
	}
	if r.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if r.Reaction == "" {
		return NewValidationError("reaction", "cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(r.Reaction) > MaxReactionLength {
		return NewValidationError("reaction", "is too long", ErrValidation)
	}
	if r.Comment != nil && utf8.RuneCountInString(*r.Comment) > MaxCommentLength {
		return NewValidationError("comment", "is too long", ErrValidation)
	}
	return nil
}

// Validate rejects explicit nulls on non-nullable fields.
func (p RelationPatch) Validate() error {
	if err := requireValue("reaction", p.Reaction); err != nil {
		return err
	}
	return requireValue("is_assigned", p.IsAssigned)
}

// IsEmpty reports whether the patch carries no fields.
func (p RelationPatch) IsEmpty() bool {
	return !p.Reaction.Set && !p.Comment.Set && !p.IsAssigned.Set
}

// Apply returns a validated copy of the relation with the patch applied.
func (r *TaskUserRelation) Apply(p RelationPatch) (*TaskUserRelation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	updated := *r
	if p.Reaction.Set {
		updated.Reaction = p.Reaction.Value
	}
	if p.Comment.Set {
		updated.Comment = p.Comment.Ptr()
	}
	if p.IsAssigned.Set {
		updated.IsAssigned = p.IsAssigned.Value
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return &updated, nil
}

// JoinOutcome tells a caller whether a join created the relation.
type JoinOutcome int

const (
	// JoinCreated means a new relation row was inserted.
	JoinCreated JoinOutcome = iota + 1
	// JoinAlreadyJoined means the user already had a relation, which is returned unchanged.
	JoinAlreadyJoined
)

// String implements fmt.Stringer.
func (o JoinOutcome) String() string {
	switch o {
	case JoinCreated:
		return "created"
	case JoinAlreadyJoined:
		return "already_joined"
	default:
		return "unknown"
	}
}

// JoinResult is the tagged result of joining a task.
type JoinResult struct {
	Relation *TaskUserRelation
	Outcome  JoinOutcome
}
