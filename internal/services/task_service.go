package services

import (
	"github.com/isdelr/taskhub-be/internal/database"
	"github.com/isdelr/taskhub-be/internal/models"
)

// TaskService stores tasks; tasks can be listed by owner via the "userId" filter.
type TaskService = RecordService[models.Task, *models.Task]

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider = RecordServiceProvider[models.Task]

// NewTaskService creates a new TaskService.
func NewTaskService(db *database.DB) *TaskService {
	return NewRecordService[models.Task](db, taskSchema())
}

func taskSchema() Schema[models.Task] {
	return Schema[models.Task]{
		Table:   "tasks",
		Columns: []string{"title", "detail", "due_date", "due_time", "status", "user_id"},
		Fields: map[string]string{
			"userId": "user_id",
			"status": "status",
			"title":  "title",
		},
		Values: func(t *models.Task) []any {
			var due any
			if t.Date != nil {
				due = t.Date.UTC()
			}
			return []any{t.Title, t.Detail, due, t.Time, t.Status, t.UserID}
		},
		Targets: func(t *models.Task) []any {
			return []any{&t.Title, &t.Detail, &t.Date, &t.Time, &t.Status, &t.UserID}
		},
		Prepare: func(t *models.Task, isNew bool) error {
			if isNew && t.Status == "" {
				t.Status = models.StatusPending
			}
			return validateStruct(t)
		},
	}
}
