package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskhub-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ResourceHandler maps the CRUD routes of one record kind onto its store.
type ResourceHandler[T any] struct {
	service services.RecordServiceProvider[T]
	kind    string
}

// NewResourceHandler creates a ResourceHandler. kind names the record in logs.
func NewResourceHandler[T any](service services.RecordServiceProvider[T], kind string) *ResourceHandler[T] {
	return &ResourceHandler[T]{service: service, kind: kind}
}

// Create handles the request to create a new record.
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := decodeBody(w, r, &rec); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), rec)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			respondMessage(w, http.StatusBadRequest, verr.Message)
			return
		}
		log.Error().Err(err).Str("kind", h.kind).Msg("Failed to create record")
		respondMessage(w, http.StatusInternalServerError, "failed to create "+h.kind)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Get handles the request to get a single record by its ID.
func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.service.Read(r.Context(), id)
	if err != nil {
		h.fail(w, err, "read", id)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Update applies the JSON body as a partial update to an existing record.
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !json.Valid(body) {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, func(rec *T) error {
		if err := json.Unmarshal(body, rec); err != nil {
			return &services.ValidationError{Message: "invalid request body: " + err.Error()}
		}
		return nil
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			respondMessage(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.fail(w, err, "update", id)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a record and returns it.
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, err, "delete", id)
		return
	}
	respondJSON(w, http.StatusOK, deleted)
}

// GetAll handles the request to list every record.
func (h *ResourceHandler[T]) GetAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, nil)
}

func (h *ResourceHandler[T]) list(w http.ResponseWriter, r *http.Request, filter services.Filter) {
	records, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Str("kind", h.kind).Msg("Failed to list records")
		respondMessage(w, http.StatusInternalServerError, "failed to list "+h.kind+"s")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// fail maps store errors for id-addressed operations.
func (h *ResourceHandler[T]) fail(w http.ResponseWriter, err error, op, id string) {
	if errors.Is(err, services.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, h.kind+" not found")
		return
	}
	log.Error().Err(err).Str("kind", h.kind).Str("id", id).Msgf("Failed to %s record", op)
	respondMessage(w, http.StatusInternalServerError, "failed to "+op+" "+h.kind)
}
