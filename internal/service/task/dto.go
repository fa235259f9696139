package task

// CreateTaskResponse is returned synchronously from task creation. It
// always reflects pending status, even if processing finishes before
// the caller reads it.
type CreateTaskResponse struct {
	TaskID string  `json:"taskId"`
	Status string  `json:"status"`
	Price  float64 `json:"price"`
}

// ImageResponse is one produced variant as surfaced to pollers.
type ImageResponse struct {
	Resolution string `json:"resolution"`
	Path       string `json:"path"`
}

// TaskResponse is the status projection returned from task lookup.
// Timestamps appear once the task is finished, images only when
// completed and the error only when failed.
type TaskResponse struct {
	TaskID    string          `json:"taskId"`
	Status    string          `json:"status"`
	Price     float64         `json:"price"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
	Images    []ImageResponse `json:"images,omitempty"`
	Error     string          `json:"error,omitempty"`
}
