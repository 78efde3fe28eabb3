package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskhub-be/internal/models"
	"github.com/isdelr/taskhub-be/internal/services"
)

// fakeTaskStore returns err from every operation when set.
type fakeTaskStore struct {
	err        error
	lastFilter services.Filter
	task       models.Task
}

func (f *fakeTaskStore) Create(_ context.Context, rec models.Task) (models.Task, error) {
	return rec, f.err
}

func (f *fakeTaskStore) Read(context.Context, string) (models.Task, error) {
	return f.task, f.err
}

func (f *fakeTaskStore) Update(_ context.Context, _ string, patch services.Patch[models.Task]) (models.Task, error) {
	if f.err != nil {
		return models.Task{}, f.err
	}
	rec := f.task
	if err := patch(&rec); err != nil {
		return models.Task{}, err
	}
	return rec, nil
}

func (f *fakeTaskStore) Delete(context.Context, string) (models.Task, error) {
	return f.task, f.err
}

func (f *fakeTaskStore) GetAll(_ context.Context, filter services.Filter) ([]models.Task, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return []models.Task{f.task}, nil
}

func (f *fakeTaskStore) FindOne(context.Context, services.Filter) (*models.Task, error) {
	return nil, f.err
}

func newTaskRouter(store *fakeTaskStore) http.Handler {
	h := NewTaskHandler(store)
	r := chi.NewRouter()
	r.Get("/tasks", h.GetAll)
	r.Post("/tasks", h.Create)
	r.Get("/tasks/{id}", h.Get)
	r.Put("/tasks/{id}", h.Update)
	r.Delete("/tasks/{id}", h.Delete)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestResourceHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		want   int
	}{
		{name: "get not found", err: services.ErrNotFound, method: http.MethodGet, path: "/tasks/x", want: http.StatusNotFound},
		{name: "get storage failure", err: errors.New("disk full"), method: http.MethodGet, path: "/tasks/x", want: http.StatusInternalServerError},
		{name: "delete not found", err: services.ErrNotFound, method: http.MethodDelete, path: "/tasks/x", want: http.StatusNotFound},
		{name: "delete storage failure", err: errors.New("disk full"), method: http.MethodDelete, path: "/tasks/x", want: http.StatusInternalServerError},
		{name: "update not found", err: services.ErrNotFound, method: http.MethodPut, path: "/tasks/x", body: `{}`, want: http.StatusNotFound},
		{name: "update storage failure", err: errors.New("disk full"), method: http.MethodPut, path: "/tasks/x", body: `{}`, want: http.StatusInternalServerError},
		{name: "update validation", err: &services.ValidationError{Message: "title is required"}, method: http.MethodPut, path: "/tasks/x", body: `{}`, want: http.StatusBadRequest},
		{name: "create validation", err: &services.ValidationError{Message: "title is required"}, method: http.MethodPost, path: "/tasks", body: `{}`, want: http.StatusBadRequest},
		{name: "create storage failure", err: errors.New("disk full"), method: http.MethodPost, path: "/tasks", body: `{}`, want: http.StatusInternalServerError},
		{name: "list storage failure", err: errors.New("disk full"), method: http.MethodGet, path: "/tasks", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTaskRouter(&fakeTaskStore{err: tt.err}), tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["message"] == "" {
				t.Errorf("error body = %s, want {\"message\": ...}", rec.Body.String())
			}
		})
	}
}

func TestResourceHandlerUpdateRejectsMalformedBody(t *testing.T) {
	store := &fakeTaskStore{task: models.Task{Title: "Buy milk"}}
	for _, body := range []string{`{"title":`, `{"title": 5}`} {
		rec := serve(newTaskRouter(store), http.MethodPut, "/tasks/x", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("PUT %s = %d, want 400", body, rec.Code)
		}
	}
}

func TestTaskHandlerGetAllFilter(t *testing.T) {
	store := &fakeTaskStore{task: models.Task{Title: "Buy milk", UserID: "u1"}}
	h := newTaskRouter(store)

	if rec := serve(h, http.MethodGet, "/tasks?userId=u1", ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.lastFilter["userId"] != "u1" {
		t.Errorf("filter = %v, want userId=u1", store.lastFilter)
	}

	serve(h, http.MethodGet, "/tasks", "")
	if len(store.lastFilter) != 0 {
		t.Errorf("filter without query = %v, want empty", store.lastFilter)
	}
}
