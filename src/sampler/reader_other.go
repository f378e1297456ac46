//go:build !windows

package sampler

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"wcolor/src/colormodel"
)

// captureReader grabs a 1x1 rectangle per read. There is no persistent DC
// on these platforms, so Close has nothing to free.
type captureReader struct{}

func openPlatformReader() (Reader, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	return captureReader{}, nil
}

func (captureReader) Pixel(x, y int) (colormodel.Color, error) {
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+1, y+1))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSampleUnavailable, err)
	}
	if img.Bounds().Empty() {
		return 0, ErrSampleUnavailable
	}
	return colormodel.FromRGBA(img.RGBAAt(img.Bounds().Min.X, img.Bounds().Min.Y)), nil
}

func (captureReader) Close() error { return nil }
