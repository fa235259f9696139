package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/dbpg"

	"github.com/imageworks/image-tasks/internal/model"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyExists = errors.New("task already exists")
)

// Repository persists tasks in PostgreSQL. Produced images are stored
// denormalized as a JSONB column on the task row.
type Repository struct {
	db *dbpg.DB
}

func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// imageRecord is the JSON shape of one produced image inside the images
// column.
type imageRecord struct {
	Resolution string    `json:"resolution"`
	Path       string    `json:"path"`
	MD5        string    `json:"md5"`
	CreatedAt  time.Time `json:"created_at"`
}

// Save inserts a brand-new task. It fails with ErrTaskAlreadyExists if a
// row with the same identifier is already present.
func (r *Repository) Save(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (id, status, price, original_path, error_message, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	images, err := marshalImages(t.Images())
	if err != nil {
		return fmt.Errorf("save: failed to marshal images: %w", err)
	}

	res, err := r.db.ExecContext(
		ctx, query,
		t.ID().String(), t.Status().String(), t.Price().Value(), t.OriginalPath(),
		t.ErrorMessage(), images, t.CreatedAt(), t.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save: failed to save task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return ErrTaskAlreadyExists
	}

	return nil
}

// GetByID returns the task with the given identifier, or ErrTaskNotFound.
func (r *Repository) GetByID(ctx context.Context, id model.TaskID) (*model.Task, error) {
	query := `
		SELECT status, price, original_path, error_message, images, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var (
		status       string
		price        float64
		originalPath string
		errMessage   string
		imagesRaw    []byte
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := r.db.Master.QueryRowContext(ctx, query, id.String()).Scan(
		&status, &price, &originalPath, &errMessage, &imagesRaw, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		return nil, fmt.Errorf("get: failed to get task: %w", err)
	}

	taskStatus, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("get: task %s has invalid status: %w", id, err)
	}

	images, err := unmarshalImages(imagesRaw)
	if err != nil {
		return nil, fmt.Errorf("get: task %s has invalid images: %w", id, err)
	}

	return model.RehydrateTask(
		id, taskStatus, model.Price(price), originalPath,
		createdAt, updatedAt, images, errMessage,
	)
}

// Update overwrites the mutable fields of an existing task. It fails
// with ErrTaskNotFound if the identifier does not exist.
func (r *Repository) Update(ctx context.Context, t *model.Task) error {
	query := `
		UPDATE tasks
		SET status = $2, error_message = $3, images = $4, updated_at = $5
		WHERE id = $1
	`

	images, err := marshalImages(t.Images())
	if err != nil {
		return fmt.Errorf("update: failed to marshal images: %w", err)
	}

	res, err := r.db.ExecContext(
		ctx, query,
		t.ID().String(), t.Status().String(), t.ErrorMessage(), images, t.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("update: failed to update task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func marshalImages(images []model.Image) ([]byte, error) {
	records := make([]imageRecord, 0, len(images))

	for _, img := range images {
		records = append(records, imageRecord{
			Resolution: img.Resolution().String(),
			Path:       img.Path(),
			MD5:        img.MD5(),
			CreatedAt:  img.CreatedAt(),
		})
	}

	return json.Marshal(records)
}

func unmarshalImages(raw []byte) ([]model.Image, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var records []imageRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	images := make([]model.Image, 0, len(records))

	for _, rec := range records {
		resolution, err := model.ParseResolution(rec.Resolution)
		if err != nil {
			return nil, err
		}

		img, err := model.NewImage(resolution, rec.Path, rec.MD5, rec.CreatedAt)
		if err != nil {
			return nil, err
		}

		images = append(images, img)
	}

	return images, nil
}
