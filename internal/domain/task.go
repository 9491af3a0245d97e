package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length limits enforced by Task.Validate.
const (
	MaxTaskTitleLength       = 200
	MaxTaskStatusLength      = 50
	MaxTaskLocationLength    = 200
	MaxTaskDescriptionLength = 4000
)

// Task is a schedulable item owned by a group. IsTask distinguishes a to-do
// from a plain calendar event.
type Task struct {
	ID            uuid.UUID  `json:"task_id"`
	GroupID       uuid.UUID  `json:"group_id"`
	Title         string     `json:"title"`
	Date          time.Time  `json:"date"`
	TimeSpanBegin *time.Time `json:"time_span_begin,omitempty"`
	TimeSpanEnd   *time.Time `json:"time_span_end,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Description   *string    `json:"description,omitempty"`
	IsTask        bool       `json:"is_task"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	// UpdatedAt stays nil until the task is modified for the first time.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations is populated by read paths that need the participant list.
	Relations []*TaskUserRelation `json:"task_user_relations,omitempty"`
}

// TaskInput carries the fields a caller supplies when creating a task.
type TaskInput struct {
	Title         string
	Date          time.Time
	TimeSpanBegin *time.Time
	TimeSpanEnd   *time.Time
	Location      *string
	Description   *string
	IsTask        bool
	Status        string
}

// TaskPatch is a partial update of a task. Only fields with Set == true are applied.
type TaskPatch struct {
	Title         Optional[string]
	Date          Optional[time.Time]
	TimeSpanBegin Optional[time.Time]
	TimeSpanEnd   Optional[time.Time]
	Location      Optional[string]
	Description   Optional[string]
	IsTask        Optional[bool]
	Status        Optional[string]
}

// NewTask builds a task for the given group and validates it.
// CreatedAt is provisional; the store overwrites it with the persisted value.
func NewTask(groupID uuid.UUID, in TaskInput) (*Task, error) {
	task := &Task{
		ID:            uuid.New(),
		GroupID:       groupID,
		Title:         in.Title,
		Date:          in.Date.UTC(),
		TimeSpanBegin: utcPtr(in.TimeSpanBegin),
		TimeSpanEnd:   utcPtr(in.TimeSpanEnd),
		Location:      in.Location,
		Description:   in.Description,
		IsTask:        in.IsTask,
		Status:        in.Status,
		CreatedAt:     time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's invariants.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("task_id", "cannot be empty", ErrInvalidID)
	}
	if t.GroupID == uuid.Nil {
		return NewValidationError("group_id", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return NewValidationError("title", "is too long", ErrValidation)
	}
	if t.Status == "" {
		return NewValidationError("status", "cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(t.Status) > MaxTaskStatusLength {
		return NewValidationError("status", "is too long", ErrValidation)
	}
	if t.Date.IsZero() {
		return NewValidationError("date", "is required", ErrValidation)
	}
	if t.TimeSpanBegin != nil && t.TimeSpanEnd != nil && t.TimeSpanEnd.Before(*t.TimeSpanBegin) {
		return NewValidationError("time_span_end", "must not be before time_span_begin", ErrValidation)
	}
	if t.Location != nil && utf8.RuneCountInString(*t.Location) > MaxTaskLocationLength {
		return NewValidationError("location", "is too long", ErrValidation)
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxTaskDescriptionLength {
		return NewValidationError("description", "is too long", ErrValidation)
	}
	return nil
}

// Validate rejects explicit nulls on non-nullable fields.
func (p TaskPatch) Validate() error {
	if err := requireValue("title", p.Title); err != nil {
		return err
	}
	if err := requireValue("date", p.Date); err != nil {
		return err
	}
	if err := requireValue("is_task", p.IsTask); err != nil {
		return err
	}
	return requireValue("status", p.Status)
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Date.Set && !p.TimeSpanBegin.Set && !p.TimeSpanEnd.Set &&
		!p.Location.Set && !p.Description.Set && !p.IsTask.Set && !p.Status.Set
}

// Apply returns a copy of the task with the patch applied and validated.
// The receiver is left untouched.
func (t *Task) Apply(p TaskPatch) (*Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	updated := *t
	updated.Relations = nil
	if p.Title.Set {
		updated.Title = p.Title.Value
	}
	if p.Date.Set {
		updated.Date = p.Date.Value.UTC()
	}
	if p.TimeSpanBegin.Set {
		updated.TimeSpanBegin = utcPtr(p.TimeSpanBegin.Ptr())
	}
	if p.TimeSpanEnd.Set {
		updated.TimeSpanEnd = utcPtr(p.TimeSpanEnd.Ptr())
	}
	if p.Location.Set {
		updated.Location = p.Location.Ptr()
	}
	if p.Description.Set {
		updated.Description = p.Description.Ptr()
	}
	if p.IsTask.Set {
		updated.IsTask = p.IsTask.Value
	}
	if p.Status.Set {
		updated.Status = p.Status.Value
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return &updated, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
