package postgres

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/stretchr/testify/require"
)

var taskColumnNames = []string{
	"id", "group_id", "title", "date", "time_span_begin", "time_span_end",
	"location", "description", "is_task", "status", "created_at", "updated_at",
}

var relationColumnNames = []string{
	"id", "task_id", "user_id", "is_assigned", "reaction", "comment",
	"id", "email", "display_name",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func sampleTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), domain.TaskInput{
		Title:  "Picnic",
		Date:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status: "planned",
	})
	require.NoError(t, err)
	return task
}

func taskRow(task *domain.Task) []driver.Value {
	var updatedAt any
	if task.UpdatedAt != nil {
		updatedAt = *task.UpdatedAt
	}
	var location any
	if task.Location != nil {
		location = *task.Location
	}
	return []driver.Value{
		task.ID.String(), task.GroupID.String(), task.Title, task.Date, nil, nil,
		location, nil, task.IsTask, task.Status, task.CreatedAt, updatedAt,
	}
}

func relationRow(rel *domain.TaskUserRelation, email string) []driver.Value {
	var comment any
	if rel.Comment != nil {
		comment = *rel.Comment
	}
	var userID, userEmail, displayName any
	if email != "" {
		userID, userEmail, displayName = rel.UserID.String(), email, "Ana"
	}
	return []driver.Value{
		rel.ID.String(), rel.TaskID.String(), rel.UserID.String(), rel.IsAssigned,
		rel.Reaction, comment, userID, userEmail, displayName,
	}
}
