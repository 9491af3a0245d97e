package postgres

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const taskColumns = `id, group_id, title, date, time_span_begin, time_span_end,
	location, description, is_task, status, created_at, updated_at`

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t           domain.Task
		begin, end  sql.NullTime
		location    sql.NullString
		description sql.NullString
		updatedAt   sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.GroupID,
		&t.Title,
		&t.Date,
		&begin,
		&end,
		&location,
		&description,
		&t.IsTask,
		&t.Status,
		&t.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.TimeSpanBegin = nullTimePtr(begin)
	t.TimeSpanEnd = nullTimePtr(end)
	t.Location = nullStringPtr(location)
	t.Description = nullStringPtr(description)
	t.UpdatedAt = nullTimePtr(updatedAt)
	return &t, nil
}

// relationColumns selects a relation aliased r joined to its user aliased u.
const relationColumns = `r.id, r.task_id, r.user_id, r.is_assigned, r.reaction, r.comment,
	u.id, u.email, u.display_name`

func scanRelation(row rowScanner) (*domain.TaskUserRelation, error) {
	var (
		rel         domain.TaskUserRelation
		comment     sql.NullString
		userID      uuid.NullUUID
		email       sql.NullString
		displayName sql.NullString
	)
	err := row.Scan(
		&rel.ID,
		&rel.TaskID,
		&rel.UserID,
		&rel.IsAssigned,
		&rel.Reaction,
		&comment,
		&userID,
		&email,
		&displayName,
	)
	if err != nil {
		return nil, err
	}

	rel.Comment = nullStringPtr(comment)
	if userID.Valid {
		rel.User = &domain.UserSummary{
			ID:          userID.UUID,
			Email:       email.String,
			DisplayName: displayName.String,
		}
	}
	return &rel, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
