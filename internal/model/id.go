package model

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// TaskID is an opaque 24-character hex identifier backed by a 12-byte
// scheme: 4 bytes of unix time followed by 8 random bytes. The format is
// shared with external systems, so it is validated on rehydration.
type TaskID string

var taskIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewTaskID generates a fresh identifier from the current time and
// random bytes.
func NewTaskID() TaskID {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	_, _ = rand.Read(b[4:])

	return TaskID(hex.EncodeToString(b[:]))
}

// ParseTaskID validates an externally supplied identifier and returns it
// as a TaskID.
func ParseTaskID(s string) (TaskID, error) {
	if s == "" {
		return "", fmt.Errorf("%w: taskId is required", ErrValidation)
	}

	if !taskIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: taskId must be a 24-character hex string", ErrValidation)
	}

	return TaskID(s), nil
}

func (id TaskID) String() string {
	return string(id)
}
