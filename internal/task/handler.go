package task

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bingshan1999/TaskManager/internal/dto"
)

type Handler struct {
	service TaskService
	log     zerolog.Logger
}

func NewHandler(service TaskService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes mounts the /tasks resource on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.TaskList)
		r.Post("/", h.CreateTask)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
}

func (h *Handler) TaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.TaskList(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, toResponseList(tasks))
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, toResponse(task))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleDecodeError(w, err)
		return
	}

	fields, err := fieldsFromRequest(req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), fields)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, toResponse(task))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req dto.TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleDecodeError(w, err)
		return
	}

	fields, err := fieldsFromRequest(req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), id, fields)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, toResponse(task))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, h.log, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, h.log, http.StatusBadRequest, "invalid json")
}

// handleError maps service errors to status codes. Not found is an empty 404.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, errInvalidID), errors.Is(err, ErrInvalidStatus):
		writeError(w, h.log, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("task request failed")
		writeError(w, h.log, http.StatusInternalServerError, "internal server error")
	}
}
