package model

import "fmt"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Task lifecycle states. Pending tasks move to processing when a worker
// picks them up; completed and failed are terminal.
const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// ParseTaskStatus validates a status value coming from storage.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("%w: invalid task status %q", ErrValidation, s)
	}
}

func (s TaskStatus) IsPending() bool {
	return s == StatusPending
}

func (s TaskStatus) IsProcessing() bool {
	return s == StatusProcessing
}

func (s TaskStatus) IsCompleted() bool {
	return s == StatusCompleted
}

func (s TaskStatus) IsFailed() bool {
	return s == StatusFailed
}

// IsFinished reports whether the status is terminal.
func (s TaskStatus) IsFinished() bool {
	return s.IsCompleted() || s.IsFailed()
}

func (s TaskStatus) String() string {
	return string(s)
}
