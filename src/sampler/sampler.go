package sampler

import (
	"errors"
	"fmt"
	"image"
	"log"

	"wcolor/src/colormodel"
)

// ErrSampleUnavailable is returned when the platform could not read the pixel
// (for example GetPixel answering CLR_INVALID for a coordinate off every
// monitor or a locked desktop).
var ErrSampleUnavailable = errors.New("sample unavailable")

// Reader reads single screen pixels through a device context that stays open
// until Close.
type Reader interface {
	Pixel(x, y int) (colormodel.Color, error)
	Close() error
}

// Sampler reads the color under a screen coordinate.
type Sampler struct {
	reader Reader
}

// New wraps an already opened reader.
func New(r Reader) *Sampler {
	return &Sampler{reader: r}
}

// Open returns a Sampler backed by the platform reader.
func Open() (*Sampler, error) {
	r, err := openPlatformReader()
	if err != nil {
		return nil, fmt.Errorf("failed to open screen device context: %w", err)
	}
	return New(r), nil
}

// Read returns the color of the pixel at p.
func (s *Sampler) Read(p image.Point) (colormodel.Color, error) {
	c, err := s.reader.Pixel(p.X, p.Y)
	if err != nil {
		if errors.Is(err, ErrSampleUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrSampleUnavailable, err)
	}
	return c, nil
}

// ReadRetry reads p, retrying immediately up to attempts-1 more times while
// the sample is unavailable.
func (s *Sampler) ReadRetry(p image.Point, attempts int) (colormodel.Color, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		c, err := s.Read(p)
		if err == nil {
			return c, nil
		}
		log.Printf("SAMPLER: read at (%d,%d) failed (attempt %d/%d): %v", p.X, p.Y, i+1, attempts, err)
		lastErr = err
	}
	return 0, lastErr
}

// Close releases the device context.
func (s *Sampler) Close() error {
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}
