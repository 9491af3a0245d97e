package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTaskInput() TaskInput {
	return TaskInput{
		Title:  "Picnic",
		Date:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		IsTask: false,
		Status: "planned",
	}
}

func TestNewTask(t *testing.T) {
	t.Parallel()
	groupID := uuid.New()

	task, err := NewTask(groupID, validTaskInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, groupID, task.GroupID)
	assert.Equal(t, "Picnic", task.Title)
	assert.Nil(t, task.UpdatedAt, "a new task has no UpdatedAt")
	assert.Empty(t, task.Relations)
}

func TestNewTaskNormalizesToUTC(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("JST", 9*60*60)
	begin := time.Date(2024, 6, 1, 10, 0, 0, 0, loc)

	in := validTaskInput()
	in.Date = time.Date(2024, 6, 1, 9, 0, 0, 0, loc)
	in.TimeSpanBegin = &begin

	task, err := NewTask(uuid.New(), in)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, task.Date.Location())
	require.NotNil(t, task.TimeSpanBegin)
	assert.True(t, task.TimeSpanBegin.Equal(begin))
	assert.Equal(t, time.UTC, task.TimeSpanBegin.Location())
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()
	begin := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	end := begin.Add(-time.Hour)
	longTitle := strings.Repeat("a", MaxTaskTitleLength+1)

	tests := []struct {
		name      string
		mutate    func(in *TaskInput)
		nilGroup  bool
		wantField string
	}{
		{name: "empty title", mutate: func(in *TaskInput) { in.Title = "" }, wantField: "title"},
		{name: "long title", mutate: func(in *TaskInput) { in.Title = longTitle }, wantField: "title"},
		{name: "empty status", mutate: func(in *TaskInput) { in.Status = "" }, wantField: "status"},
		{name: "zero date", mutate: func(in *TaskInput) { in.Date = time.Time{} }, wantField: "date"},
		{
			name: "end before begin",
			mutate: func(in *TaskInput) {
				in.TimeSpanBegin = &begin
				in.TimeSpanEnd = &end
			},
			wantField: "time_span_end",
		},
		{name: "nil group", mutate: func(in *TaskInput) {}, nilGroup: true, wantField: "group_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validTaskInput()
			tc.mutate(&in)
			groupID := uuid.New()
			if tc.nilGroup {
				groupID = uuid.Nil
			}

			_, err := NewTask(groupID, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestTaskApply(t *testing.T) {
	t.Parallel()
	location := "Park"
	task, err := NewTask(uuid.New(), validTaskInput())
	require.NoError(t, err)
	task.Location = &location

	t.Run("only present fields change", func(t *testing.T) {
		updated, err := task.Apply(TaskPatch{Status: Some("done")})
		require.NoError(t, err)

		assert.Equal(t, "done", updated.Status)
		assert.Equal(t, task.Title, updated.Title)
		assert.True(t, updated.Date.Equal(task.Date))
		assert.Equal(t, task.IsTask, updated.IsTask)
		require.NotNil(t, updated.Location)
		assert.Equal(t, "Park", *updated.Location)
		assert.Equal(t, "planned", task.Status, "the original task is unchanged")
	})

	t.Run("explicit null clears nullable field", func(t *testing.T) {
		updated, err := task.Apply(TaskPatch{Location: Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, updated.Location)
	})

	t.Run("explicit null on required field is rejected", func(t *testing.T) {
		_, err := task.Apply(TaskPatch{Title: Null[string]()})
		assert.ErrorIs(t, err, ErrNullNotAllowed)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("merged result is validated", func(t *testing.T) {
		begin := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		withBegin, err := task.Apply(TaskPatch{TimeSpanBegin: Some(begin)})
		require.NoError(t, err)

		_, err = withBegin.Apply(TaskPatch{TimeSpanEnd: Some(begin.Add(-time.Minute))})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestTaskPatchIsEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, TaskPatch{}.IsEmpty())
	assert.False(t, TaskPatch{Description: Null[string]()}.IsEmpty(), "explicit null counts as present")
}
