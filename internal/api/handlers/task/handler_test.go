package task

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageworks/image-tasks/internal/middleware"
	"github.com/imageworks/image-tasks/internal/model"
	taskrepo "github.com/imageworks/image-tasks/internal/repository/task"
	tasksvc "github.com/imageworks/image-tasks/internal/service/task"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type stubService struct {
	createResp tasksvc.CreateTaskResponse
	createErr  error
	getResp    tasksvc.TaskResponse
	getErr     error
	gotPath    string
	gotID      string
}

func (s *stubService) CreateTask(_ context.Context, originalPath string) (tasksvc.CreateTaskResponse, error) {
	s.gotPath = originalPath
	return s.createResp, s.createErr
}

func (s *stubService) GetTask(_ context.Context, taskID string) (tasksvc.TaskResponse, error) {
	s.gotID = taskID
	return s.getResp, s.getErr
}

func setupRouter(s *stubService) *ginext.Engine {
	r := ginext.New()
	r.Use(middleware.RequestID())

	h := NewHandler(s)
	api := r.Group("/api")
	api.POST("/tasks", h.Create)
	api.GET("/tasks/:taskId", h.Get)

	return r
}

func TestHandler_Create(t *testing.T) {
	svc := &stubService{
		createResp: tasksvc.CreateTaskResponse{
			TaskID: "68b0000000000000000000aa",
			Status: "pending",
			Price:  19.99,
		},
	}
	r := setupRouter(svc)

	body := strings.NewReader(`{"originalPath": "/tmp/cat.jpg"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/tmp/cat.jpg", svc.gotPath)
	assert.Contains(t, w.Body.String(), `"taskId":"68b0000000000000000000aa"`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandler_Create_InvalidBody(t *testing.T) {
	r := setupRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Create_ValidationError(t *testing.T) {
	svc := &stubService{
		createErr: fmt.Errorf("%w: originalPath is required", model.ErrValidation),
	}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"originalPath": ""}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "originalPath is required")
}

func TestHandler_Get(t *testing.T) {
	svc := &stubService{
		getResp: tasksvc.TaskResponse{
			TaskID: "68b0000000000000000000aa",
			Status: "completed",
			Price:  12.5,
			Images: []tasksvc.ImageResponse{
				{Resolution: "1024", Path: "/out/cat/1024/a.jpg"},
				{Resolution: "800", Path: "/out/cat/800/b.jpg"},
			},
		},
	}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/68b0000000000000000000aa", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "68b0000000000000000000aa", svc.gotID)
	assert.Contains(t, w.Body.String(), `"resolution":"1024"`)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestHandler_Get_NotFound(t *testing.T) {
	svc := &stubService{getErr: taskrepo.ErrTaskNotFound}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/aaaaaaaaaaaaaaaaaaaaaaaa", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Get_InvalidID(t *testing.T) {
	svc := &stubService{getErr: fmt.Errorf("%w: taskId must be a 24-character hex string", model.ErrValidation)}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad input", model.ErrValidation), http.StatusBadRequest},
		{"not found", taskrepo.ErrTaskNotFound, http.StatusNotFound},
		{"state conflict", fmt.Errorf("%w: cannot fail a completed task", model.ErrInvalidState), http.StatusConflict},
		{"persistence", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&stubService{getErr: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks/aaaaaaaaaaaaaaaaaaaaaaaa", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
