package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageworks/image-tasks/internal/model"
)

// fileStorage defines the interface for writing produced variants and
// removing them again when a batch cannot be finished.
type fileStorage interface {
	Save(subdir, filename string, src io.Reader) (string, error)
	Delete(subdir, filename string) error
}

// Processor produces resized variants of a source image, one per
// supported resolution. Variants are written as
// <base>/<resolution>/<md5><ext>, where the checksum is taken over the
// produced bytes.
type Processor struct {
	fileStorage fileStorage
	client      *http.Client
}

// New creates a Processor writing through the given storage backend.
func New(fs fileStorage) *Processor {
	return &Processor{
		fileStorage: fs,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// ProduceVariants reads the source image, resizes it to every supported
// resolution and writes the results through the storage backend. The
// returned records follow the order of model.Resolutions.
func (p *Processor) ProduceVariants(ctx context.Context, originalPath, baseName string) ([]model.Image, error) {
	src, err := p.openSource(ctx, originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(baseName))
	base := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		// Formats we can decode but not encode (e.g. webp) fall back to JPEG.
		format, ext = imaging.JPEG, ".jpg"
	}

	images := make([]model.Image, 0, len(model.Resolutions()))

	var written []variantFile

	// A partially produced batch is worthless: the task either completes
	// with every resolution or fails, so earlier variants are removed
	// when a later one cannot be produced.
	cleanup := func() {
		for _, f := range written {
			if err := p.fileStorage.Delete(f.subdir, f.filename); err != nil {
				zlog.Logger.Warn().Err(err).
					Str("file", filepath.Join(f.subdir, f.filename)).
					Msg("failed to remove orphaned variant")
			}
		}
	}

	for _, resolution := range model.Resolutions() {
		// Zero height keeps the aspect ratio.
		resized := imaging.Resize(img, resolution.Width(), 0, imaging.Lanczos)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, format); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to encode %s variant: %w", resolution, err)
		}

		sum := md5.Sum(buf.Bytes())
		digest := hex.EncodeToString(sum[:])
		subdir := filepath.Join(base, resolution.String())

		dst, err := p.fileStorage.Save(subdir, digest+ext, &buf)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to save %s variant: %w", resolution, err)
		}

		written = append(written, variantFile{subdir: subdir, filename: digest + ext})

		record, err := model.NewImage(resolution, dst, digest, time.Time{})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to build image record: %w", err)
		}

		images = append(images, record)
	}

	return images, nil
}

// variantFile locates one written variant within the storage backend.
type variantFile struct {
	subdir   string
	filename string
}

// openSource opens a local file, or fetches the image over HTTP when the
// path carries a URI scheme.
func (p *Processor) openSource(ctx context.Context, originalPath string) (io.ReadCloser, error) {
	if !strings.HasPrefix(originalPath, "http") {
		return os.Open(originalPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, originalPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s fetching %s", resp.Status, originalPath)
	}

	return resp.Body, nil
}
