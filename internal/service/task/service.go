package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageworks/image-tasks/internal/model"
)

// taskRepository defines the persistence contract for tasks.
type taskRepository interface {
	Save(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id model.TaskID) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
}

// variantProducer defines the contract for producing resized variants of
// a source image.
type variantProducer interface {
	ProduceVariants(ctx context.Context, originalPath, baseName string) ([]model.Image, error)
}

// dispatcher runs a background job without blocking the caller.
type dispatcher interface {
	Submit(job func(ctx context.Context))
}

// validExtensions is the whitelist of accepted source file extensions.
var validExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// Service implements task creation and lookup. Creation persists a
// pending task, hands processing to the dispatcher and returns
// immediately; pollers observe progress through GetTask.
type Service struct {
	repo       taskRepository
	producer   variantProducer
	dispatcher dispatcher
}

// NewService creates a new Service with the given repository, variant
// producer and background dispatcher.
func NewService(repo taskRepository, producer variantProducer, d dispatcher) *Service {
	return &Service{repo: repo, producer: producer, dispatcher: d}
}

// CreateTask validates the request, persists a new pending task and
// launches background processing. Exactly one background job is
// submitted per created task. The response always carries pending
// status and the assigned price.
func (s *Service) CreateTask(ctx context.Context, originalPath string) (CreateTaskResponse, error) {
	if err := validateOriginalPath(originalPath); err != nil {
		return CreateTaskResponse{}, err
	}

	t, err := model.NewTask(originalPath)
	if err != nil {
		return CreateTaskResponse{}, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return CreateTaskResponse{}, fmt.Errorf("create: failed to save task: %w", err)
	}

	// Snapshot the response before the job is submitted: once the
	// dispatcher owns the aggregate the caller must not read it again.
	resp := CreateTaskResponse{
		TaskID: t.ID().String(),
		Status: t.Status().String(),
		Price:  t.Price().Value(),
	}

	s.dispatcher.Submit(func(ctx context.Context) {
		s.process(ctx, t)
	})

	return resp, nil
}

// GetTask validates the identifier, fetches the task and projects it
// into a response shaped by its status.
func (s *Service) GetTask(ctx context.Context, taskID string) (TaskResponse, error) {
	id, err := model.ParseTaskID(taskID)
	if err != nil {
		return TaskResponse{}, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TaskResponse{}, err
	}

	return buildTaskResponse(t), nil
}

// process is the detached unit of work driving a task from pending to a
// terminal state. It never propagates errors: any fault is converted
// into a failed task, and a failing terminal update is logged and
// swallowed since there is no caller left to report to.
func (s *Service) process(ctx context.Context, t *model.Task) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().
				Interface("panic", r).
				Str("task_id", t.ID().String()).
				Msg("panic while processing task")
			s.failTask(ctx, t, fmt.Errorf("unexpected processing fault: %v", r))
		}
	}()

	if err := s.runProcessing(ctx, t); err != nil {
		s.failTask(ctx, t, err)
	}
}

func (s *Service) runProcessing(ctx context.Context, t *model.Task) error {
	if err := t.StartProcessing(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to record processing status: %w", err)
	}

	images, err := s.producer.ProduceVariants(ctx, t.OriginalPath(), filepath.Base(t.OriginalPath()))
	if err != nil {
		return fmt.Errorf("failed to process image: %w", err)
	}

	if err := t.Complete(images); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		// Terminal update failures are swallowed, never retried.
		zlog.Logger.Error().
			Err(err).
			Str("task_id", t.ID().String()).
			Msg("failed to record completed task")
		return nil
	}

	zlog.Logger.Info().
		Str("task_id", t.ID().String()).
		Int("images", len(images)).
		Msg("task completed")

	return nil
}

// failTask marks the task as failed and records it. Both steps are
// best-effort from the background job's point of view.
func (s *Service) failTask(ctx context.Context, t *model.Task, cause error) {
	if err := t.Fail(cause.Error()); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("task_id", t.ID().String()).
			Msg("failed to mark task as failed")
		return
	}

	if err := s.repo.Update(ctx, t); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("task_id", t.ID().String()).
			Msg("failed to record failed task")
		return
	}

	zlog.Logger.Warn().
		Str("task_id", t.ID().String()).
		Str("error", t.ErrorMessage()).
		Msg("task failed")
}

func validateOriginalPath(originalPath string) error {
	if strings.TrimSpace(originalPath) == "" {
		return fmt.Errorf("%w: originalPath is required", model.ErrValidation)
	}

	// Remote sources are fetched later by the producer; only local paths
	// are checked for existence up front.
	if !strings.HasPrefix(originalPath, "http") {
		if _, err := os.Stat(originalPath); err != nil {
			return fmt.Errorf("%w: File not found: %s", model.ErrValidation, originalPath)
		}
	}

	ext := strings.ToLower(filepath.Ext(originalPath))
	if _, ok := validExtensions[ext]; !ok {
		return fmt.Errorf("%w: Unsupported file format: %s", model.ErrValidation, ext)
	}

	return nil
}

func buildTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		TaskID: t.ID().String(),
		Status: t.Status().String(),
		Price:  t.Price().Value(),
	}

	status := t.Status()

	if status.IsFinished() {
		resp.CreatedAt = t.CreatedAt().Format(time.RFC3339)
		resp.UpdatedAt = t.UpdatedAt().Format(time.RFC3339)
	}

	if status.IsCompleted() {
		images := t.Images()
		resp.Images = make([]ImageResponse, 0, len(images))

		for _, img := range images {
			resp.Images = append(resp.Images, ImageResponse{
				Resolution: img.Resolution().String(),
				Path:       img.Path(),
			})
		}
	}

	if status.IsFailed() {
		resp.Error = t.ErrorMessage()
	}

	return resp
}
