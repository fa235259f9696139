package model

import (
	"fmt"
	"strconv"
)

// Resolution is the target width of a produced image variant.
type Resolution string

// Supported target widths.
const (
	Resolution1024 Resolution = "1024"
	Resolution800  Resolution = "800"
)

// Resolutions returns the fixed set of supported resolutions. The order
// is stable (widest first) and determines the order of produced variants
// in task responses.
func Resolutions() []Resolution {
	return []Resolution{Resolution1024, Resolution800}
}

// ParseResolution validates an externally supplied resolution value.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case Resolution1024, Resolution800:
		return Resolution(s), nil
	default:
		return "", fmt.Errorf("%w: invalid resolution %q", ErrValidation, s)
	}
}

// Width returns the resolution as a pixel width.
func (r Resolution) Width() int {
	w, _ := strconv.Atoi(string(r))
	return w
}

func (r Resolution) String() string {
	return string(r)
}
