package task

import (
	"context"
	"errors"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageworks/image-tasks/internal/api/respond"
	"github.com/imageworks/image-tasks/internal/model"
	taskrepo "github.com/imageworks/image-tasks/internal/repository/task"
	tasksvc "github.com/imageworks/image-tasks/internal/service/task"
)

// service defines the interface for task-related operations.
type service interface {
	CreateTask(ctx context.Context, originalPath string) (tasksvc.CreateTaskResponse, error)
	GetTask(ctx context.Context, taskID string) (tasksvc.TaskResponse, error)
}

// Handler provides HTTP handlers for task endpoints. It depends on a
// service interface to perform the business logic.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// CreateRequest is the body of a task-creation request.
type CreateRequest struct {
	OriginalPath string `json:"originalPath"`
}

// Create handles POST /api/tasks. It registers a new processing task
// and responds with its identifier, pending status and price; the
// actual processing happens in the background.
func (h *Handler) Create(c *ginext.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("invalid create task body")
		respond.Fail(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	resp, err := h.service.CreateTask(c.Request.Context(), req.OriginalPath)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond.Created(c, resp)
}

// Get handles GET /api/tasks/:taskId and returns the status projection
// for the requested task.
func (h *Handler) Get(c *ginext.Context) {
	resp, err := h.service.GetTask(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	respond.OK(c, resp)
}

// fail maps domain errors onto HTTP status codes.
func (h *Handler) fail(c *ginext.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.Fail(c, http.StatusBadRequest, err)
	case errors.Is(err, taskrepo.ErrTaskNotFound):
		respond.Fail(c, http.StatusNotFound, err)
	case errors.Is(err, model.ErrInvalidState):
		respond.Fail(c, http.StatusConflict, err)
	default:
		zlog.Logger.Err(err).Msg("task request failed")
		respond.Fail(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
