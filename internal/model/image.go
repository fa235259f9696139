package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var md5Pattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// Image describes one produced variant of a source image: the target
// resolution, where the bytes were written, and the MD5 checksum of the
// produced bytes. Immutable once constructed.
type Image struct {
	resolution Resolution
	path       string
	md5        string
	createdAt  time.Time
}

// NewImage validates and builds an Image record. A zero createdAt is
// replaced with the current time.
func NewImage(resolution Resolution, path, md5 string, createdAt time.Time) (Image, error) {
	if strings.TrimSpace(path) == "" {
		return Image{}, fmt.Errorf("%w: image path cannot be empty", ErrValidation)
	}

	if !md5Pattern.MatchString(md5) {
		return Image{}, fmt.Errorf("%w: image md5 must be a 32-character hex string", ErrValidation)
	}

	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return Image{
		resolution: resolution,
		path:       path,
		md5:        md5,
		createdAt:  createdAt,
	}, nil
}

func (i Image) Resolution() Resolution {
	return i.resolution
}

func (i Image) Path() string {
	return i.path
}

func (i Image) MD5() string {
	return i.md5
}

func (i Image) CreatedAt() time.Time {
	return i.createdAt
}

// Equal compares two records by path, checksum and resolution.
func (i Image) Equal(other Image) bool {
	return i.path == other.path && i.md5 == other.md5 && i.resolution == other.resolution
}
