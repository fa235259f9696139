package model

import (
	"fmt"
	"strings"
	"time"
)

// Task is the aggregate root for one image-processing request. It owns
// its status, timestamps, error text and the list of produced images,
// and every mutation goes through a transition method that enforces the
// lifecycle rules. Fields are unexported so callers cannot bypass them.
type Task struct {
	id           TaskID
	price        Price
	originalPath string
	status       TaskStatus
	createdAt    time.Time
	updatedAt    time.Time
	errMessage   string
	images       []Image
}

// NewTask is the sole factory for brand-new tasks: it generates a fresh
// identifier and a random price and starts the task in pending status.
func NewTask(originalPath string) (*Task, error) {
	if strings.TrimSpace(originalPath) == "" {
		return nil, fmt.Errorf("%w: original path cannot be empty", ErrValidation)
	}

	now := time.Now().UTC()

	return &Task{
		id:           NewTaskID(),
		price:        RandomPrice(),
		originalPath: originalPath,
		status:       StatusPending,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// RehydrateTask reconstructs a task from its persisted representation.
// It validates fields but does not re-derive the identifier or price.
func RehydrateTask(
	id TaskID,
	status TaskStatus,
	price Price,
	originalPath string,
	createdAt, updatedAt time.Time,
	images []Image,
	errMessage string,
) (*Task, error) {
	if strings.TrimSpace(originalPath) == "" {
		return nil, fmt.Errorf("%w: original path cannot be empty", ErrValidation)
	}

	return &Task{
		id:           id,
		price:        price,
		originalPath: originalPath,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		errMessage:   errMessage,
		images:       append([]Image(nil), images...),
	}, nil
}

// StartProcessing moves the task from pending to processing.
func (t *Task) StartProcessing() error {
	if !t.status.IsPending() {
		return fmt.Errorf("%w: can only start processing from pending status", ErrInvalidState)
	}

	t.status = StatusProcessing
	t.touch()

	return nil
}

// Complete finishes processing with the full batch of produced images.
// The image list is replaced wholesale and any prior error text cleared.
func (t *Task) Complete(images []Image) error {
	if !t.status.IsProcessing() {
		return fmt.Errorf("%w: can only complete from processing status", ErrInvalidState)
	}

	if len(images) == 0 {
		return fmt.Errorf("%w: completed task must have at least one image", ErrValidation)
	}

	t.status = StatusCompleted
	t.images = append([]Image(nil), images...)
	t.errMessage = ""
	t.touch()

	return nil
}

// Fail records a processing failure. Legal from any non-completed
// status; a completed task can never fail afterwards.
func (t *Task) Fail(message string) error {
	if t.status.IsCompleted() {
		return fmt.Errorf("%w: cannot fail a completed task", ErrInvalidState)
	}

	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: error message cannot be empty", ErrValidation)
	}

	t.status = StatusFailed
	t.errMessage = message
	t.touch()

	return nil
}

// AddImage appends a single produced image while processing. The
// creation flow uses Complete with the full batch instead.
func (t *Task) AddImage(image Image) error {
	if !t.status.IsProcessing() {
		return fmt.Errorf("%w: can only add images during processing", ErrInvalidState)
	}

	t.images = append(t.images, image)
	t.touch()

	return nil
}

// touch bumps updatedAt. It never moves the timestamp backwards.
func (t *Task) touch() {
	if now := time.Now().UTC(); now.After(t.updatedAt) {
		t.updatedAt = now
	}
}

func (t *Task) ID() TaskID {
	return t.id
}

func (t *Task) Price() Price {
	return t.price
}

func (t *Task) OriginalPath() string {
	return t.originalPath
}

func (t *Task) Status() TaskStatus {
	return t.status
}

func (t *Task) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Task) UpdatedAt() time.Time {
	return t.updatedAt
}

// ErrorMessage returns the recorded failure cause, empty unless the task
// has failed.
func (t *Task) ErrorMessage() string {
	return t.errMessage
}

// Images returns a copy of the produced image list.
func (t *Task) Images() []Image {
	return append([]Image(nil), t.images...)
}
