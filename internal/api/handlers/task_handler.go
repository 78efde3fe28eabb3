package handlers

import (
	"net/http"

	"github.com/isdelr/taskhub-be/internal/models"
	"github.com/isdelr/taskhub-be/internal/services"
)

// TaskHandler serves the task routes. Listing can be narrowed to one owner.
type TaskHandler struct {
	*ResourceHandler[models.Task]
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{ResourceHandler: NewResourceHandler(service, "task")}
}

// GetAll lists tasks, filtered by the optional userId query parameter.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var filter services.Filter
	if userID := r.URL.Query().Get("userId"); userID != "" {
		filter = services.Filter{"userId": userID}
	}
	h.list(w, r, filter)
}
