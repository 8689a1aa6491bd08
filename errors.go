package rearranger

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidBufferShape is reported when a pixel buffer's length does not
	// match 4*width*height.
	ErrInvalidBufferShape = errors.New("rearranger: invalid buffer shape")
	// ErrInvalidWindowRadius is reported for a negative window radius.
	ErrInvalidWindowRadius = errors.New("rearranger: invalid window radius")
)

// ShapeError describes which buffer failed the length check.
type ShapeError struct {
	Buffer string
	Got    int
	Want   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("rearranger: %s buffer has length %d, want %d", e.Buffer, e.Got, e.Want)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidBufferShape
}

func checkShape(name string, buf []uint8, n int) error {
	if n < 0 || n > math.MaxInt/4 || len(buf) != 4*n {
		return &ShapeError{Buffer: name, Got: len(buf), Want: 4 * min(max(n, 0), math.MaxInt/4)}
	}
	return nil
}

func pixelCount(width, height int) (int, error) {
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidBufferShape, width, height)
	}
	if width != 0 && height > math.MaxInt/4/width {
		return 0, fmt.Errorf("%w: dimensions %dx%d overflow", ErrInvalidBufferShape, width, height)
	}
	return width * height, nil
}
