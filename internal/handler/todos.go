package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
	"github.com/larsvasseldonk/calmly-list/internal/observability/metrics"
	"github.com/larsvasseldonk/calmly-list/internal/security/middleware"
	"github.com/larsvasseldonk/calmly-list/internal/service"
)

// TodoHandler handles the /todos endpoints. The owner is taken from the
// request context; without auth middleware it stays empty and the handlers
// operate single-tenant.
type TodoHandler struct {
	todoService *service.TodoService
	logger      *slog.Logger
	backend     string
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService *service.TodoService, logger *slog.Logger, backend string) *TodoHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TodoHandler{
		todoService: todoService,
		logger:      logger,
		backend:     backend,
	}
}

// CreateTodoRequest represents a todo creation request
type CreateTodoRequest struct {
	Text     string           `json:"text"`
	DueDate  *int64           `json:"dueDate"`
	Priority *domain.Priority `json:"priority"`
	Category *string          `json:"category"`
}

// List handles GET /todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerFromContext(r.Context())

	todos, err := h.todoService.List(ownerID)
	if err != nil {
		h.logger.Error("failed to list todos", slog.String("error", err.Error()))
		metrics.ObserveTodoOperation("list", "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list todos"})
		return
	}

	metrics.ObserveTodoOperation("list", "ok")
	writeJSON(w, http.StatusOK, todos)
}

// Create handles POST /todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerFromContext(r.Context())

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode create request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	todo, err := h.todoService.Create(ownerID, service.CreateTodoInput{
		Text:     req.Text,
		DueDate:  req.DueDate,
		Priority: req.Priority,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, service.ErrTextRequired) || errors.Is(err, service.ErrInvalidPriority) {
			metrics.ObserveTodoOperation("create", "invalid")
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to create todo", slog.String("error", err.Error()))
		metrics.ObserveTodoOperation("create", "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to create todo"})
		return
	}

	metrics.ObserveTodoOperation("create", "ok")
	writeJSON(w, http.StatusCreated, todo)
}

// Update handles PATCH /todos/{id} with a partial payload
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "todo id required"})
		return
	}

	var patch domain.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("failed to decode update request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	todo, err := h.todoService.Update(id, ownerID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTodoNotFound):
			metrics.ObserveTodoOperation("update", "not_found")
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Todo not found"})
		case errors.Is(err, service.ErrTextRequired), errors.Is(err, service.ErrInvalidPriority):
			metrics.ObserveTodoOperation("update", "invalid")
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.logger.Error("failed to update todo",
				slog.String("todo_id", id),
				slog.String("error", err.Error()),
			)
			metrics.ObserveTodoOperation("update", "error")
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to update todo"})
		}
		return
	}

	metrics.ObserveTodoOperation("update", "ok")
	writeJSON(w, http.StatusOK, todo)
}

// Delete handles DELETE /todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "todo id required"})
		return
	}

	if err := h.todoService.Delete(id, ownerID); err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			metrics.ObserveTodoOperation("delete", "not_found")
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Todo not found"})
			return
		}
		h.logger.Error("failed to delete todo",
			slog.String("todo_id", id),
			slog.String("error", err.Error()),
		)
		metrics.ObserveTodoOperation("delete", "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to delete todo"})
		return
	}

	metrics.ObserveTodoOperation("delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCompleted handles DELETE /todos/completed
func (h *TodoHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerFromContext(r.Context())

	count, err := h.todoService.DeleteCompleted(ownerID)
	if err != nil {
		h.logger.Error("failed to delete completed todos", slog.String("error", err.Error()))
		metrics.ObserveTodoOperation("delete_completed", "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to delete completed todos"})
		return
	}

	metrics.ObserveTodoOperation("delete_completed", "ok")
	metrics.ObserveCompletedDeleted(h.backend, count)
	w.WriteHeader(http.StatusNoContent)
}
