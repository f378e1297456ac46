//go:build !windows

package preview

import (
	"errors"
	"image"
)

type platformOpener struct{}

// Open is a stub for non-Windows platforms.
func (platformOpener) Open(pos image.Point, size int, events WindowEvents) (Window, error) {
	return nil, errors.New("preview overlay not implemented for this platform (use --no-preview)")
}
