// Package cursor reads the live pointer position.
package cursor

import (
	"errors"
	"image"
)

// ErrUnavailable is returned when the pointer position cannot be queried.
var ErrUnavailable = errors.New("cursor position unavailable")

// Source returns the current pointer position in screen coordinates.
type Source interface {
	Position() (image.Point, error)
}

// Func adapts a function to Source.
type Func func() (image.Point, error)

func (f Func) Position() (image.Point, error) { return f() }

// Fixed always reports p.
type Fixed image.Point

func (f Fixed) Position() (image.Point, error) { return image.Point(f), nil }

// Platform returns the operating system cursor source. The second result is
// false where the platform has no direct query; callers then fall back to
// positions observed by the input hook.
func Platform() (Source, bool) {
	return platformSource()
}
