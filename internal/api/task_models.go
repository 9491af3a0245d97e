package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
)

// timestampLayouts are tried in order when parsing request timestamps.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a time that accepts RFC 3339, YYYY-MM-DDTHH:MM:SS and
// YYYY-MM-DD on input and always encodes as RFC 3339 in UTC.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s with the accepted timestamp layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("timestamp",
		"must be RFC 3339, YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD", domain.ErrInvalidFormat)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.NewValidationError("timestamp", "must be a string", domain.ErrInvalidFormat)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func timestampPtr(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	return &Timestamp{Time: *t}
}

func timePtr(t *Timestamp) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func optionalTime(o domain.Optional[Timestamp]) domain.Optional[time.Time] {
	return domain.Optional[time.Time]{Value: o.Value.Time, Set: o.Set, Valid: o.Valid}
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title         string     `json:"title"           validate:"required,max=200"`
	Date          *Timestamp `json:"date"            validate:"required"`
	TimeSpanBegin *Timestamp `json:"time_span_begin"`
	TimeSpanEnd   *Timestamp `json:"time_span_end"`
	Location      *string    `json:"location"        validate:"omitempty,max=200"`
	Description   *string    `json:"description"     validate:"omitempty,max=4000"`
	IsTask        bool       `json:"is_task"`
	Status        string     `json:"status"          validate:"required,max=50"`
}

// ToInput converts the request to the domain input.
func (r *CreateTaskRequest) ToInput() domain.TaskInput {
	in := domain.TaskInput{
		Title:         r.Title,
		TimeSpanBegin: timePtr(r.TimeSpanBegin),
		TimeSpanEnd:   timePtr(r.TimeSpanEnd),
		Location:      r.Location,
		Description:   r.Description,
		IsTask:        r.IsTask,
		Status:        r.Status,
	}
	if r.Date != nil {
		in.Date = r.Date.Time
	}
	return in
}

// UpdateTaskRequest defines the payload for a partial task update.
// Omitted fields are left unchanged; null clears nullable fields and is
// rejected for the others.
type UpdateTaskRequest struct {
	Title         domain.Optional[string]    `json:"title"`
	Date          domain.Optional[Timestamp] `json:"date"`
	TimeSpanBegin domain.Optional[Timestamp] `json:"time_span_begin"`
	TimeSpanEnd   domain.Optional[Timestamp] `json:"time_span_end"`
	Location      domain.Optional[string]    `json:"location"`
	Description   domain.Optional[string]    `json:"description"`
	IsTask        domain.Optional[bool]      `json:"is_task"`
	Status        domain.Optional[string]    `json:"status"`
}

// ToPatch converts the request to a domain patch.
func (r *UpdateTaskRequest) ToPatch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:         r.Title,
		Date:          optionalTime(r.Date),
		TimeSpanBegin: optionalTime(r.TimeSpanBegin),
		TimeSpanEnd:   optionalTime(r.TimeSpanEnd),
		Location:      r.Location,
		Description:   r.Description,
		IsTask:        r.IsTask,
		Status:        r.Status,
	}
}

// Validate rejects explicit nulls on non-nullable fields.
func (r *UpdateTaskRequest) Validate() error {
	return r.ToPatch().Validate()
}

// UpdateReactionRequest defines the payload for updating the caller's relation to a task.
type UpdateReactionRequest struct {
	Reaction   domain.Optional[string] `json:"reaction"`
	Comment    domain.Optional[string] `json:"comment"`
	IsAssigned domain.Optional[bool]   `json:"is_assigned"`
}

// ToPatch converts the request to a domain patch.
func (r *UpdateReactionRequest) ToPatch() domain.RelationPatch {
	return domain.RelationPatch{
		Reaction:   r.Reaction,
		Comment:    r.Comment,
		IsAssigned: r.IsAssigned,
	}
}

// Validate rejects explicit nulls on non-nullable fields.
func (r *UpdateReactionRequest) Validate() error {
	return r.ToPatch().Validate()
}

// UserResponse is the public summary of a user attached to a relation.
type UserResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

// RelationResponse represents one user's relation to a task.
type RelationResponse struct {
	RelationID uuid.UUID     `json:"relation_id"`
	TaskID     uuid.UUID     `json:"task_id"`
	UserID     uuid.UUID     `json:"user_id"`
	IsAssigned bool          `json:"is_assigned"`
	Reaction   string        `json:"reaction"`
	Comment    *string       `json:"comment"`
	User       *UserResponse `json:"user,omitempty"`
}

// JoinTaskResponse is the relation returned by a join plus whether the join
// created it ("created") or found it ("already_joined").
type JoinTaskResponse struct {
	RelationResponse
	Outcome string `json:"outcome"`
}

// TaskResponse represents a task with its relations.
type TaskResponse struct {
	TaskID            uuid.UUID          `json:"task_id"`
	GroupID           uuid.UUID          `json:"group_id"`
	Title             string             `json:"title"`
	Date              Timestamp          `json:"date"`
	TimeSpanBegin     *Timestamp         `json:"time_span_begin"`
	TimeSpanEnd       *Timestamp         `json:"time_span_end"`
	Location          *string            `json:"location"`
	Description       *string            `json:"description"`
	IsTask            bool               `json:"is_task"`
	Status            string             `json:"status"`
	CreatedAt         Timestamp          `json:"created_at"`
	UpdatedAt         *Timestamp         `json:"updated_at"`
	TaskUserRelations []RelationResponse `json:"task_user_relations"`
}

func relationToResponse(rel *domain.TaskUserRelation) RelationResponse {
	resp := RelationResponse{
		RelationID: rel.ID,
		TaskID:     rel.TaskID,
		UserID:     rel.UserID,
		IsAssigned: rel.IsAssigned,
		Reaction:   rel.Reaction,
		Comment:    rel.Comment,
	}
	if rel.User != nil {
		resp.User = &UserResponse{
			UserID:      rel.User.ID,
			Email:       rel.User.Email,
			DisplayName: rel.User.DisplayName,
		}
	}
	return resp
}

func taskToResponse(task *domain.Task) TaskResponse {
	relations := make([]RelationResponse, 0, len(task.Relations))
	for _, rel := range task.Relations {
		relations = append(relations, relationToResponse(rel))
	}

	return TaskResponse{
		TaskID:            task.ID,
		GroupID:           task.GroupID,
		Title:             task.Title,
		Date:              Timestamp{Time: task.Date},
		TimeSpanBegin:     timestampPtr(task.TimeSpanBegin),
		TimeSpanEnd:       timestampPtr(task.TimeSpanEnd),
		Location:          task.Location,
		Description:       task.Description,
		IsTask:            task.IsTask,
		Status:            task.Status,
		CreatedAt:         Timestamp{Time: task.CreatedAt},
		UpdatedAt:         timestampPtr(task.UpdatedAt),
		TaskUserRelations: relations,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, taskToResponse(task))
	}
	return resp
}
