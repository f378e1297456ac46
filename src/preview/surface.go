// Package preview draws the sampled color in a small click-through overlay
// that follows the cursor.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"sync/atomic"

	"wcolor/src/colormodel"
)

var (
	// ErrReleased is returned by every operation on a released surface.
	// Reaching it is a programming error.
	ErrReleased = errors.New("preview surface used after release")
	ErrNotReady = errors.New("preview surface not initialized")
)

// Stage identifies the creation step that failed.
type Stage string

const (
	StageWindow   Stage = "window"
	StageDevice   Stage = "device"
	StageTarget   Stage = "presentation target"
	StageGeometry Stage = "geometry"
)

// CreateError reports which resource could not be acquired.
type CreateError struct {
	Stage Stage
	Err   error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("preview %s creation failed: %v", e.Stage, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

const (
	stateUninitialized int32 = iota
	stateReady
	stateReleased
)

// Surface owns the overlay window and every render resource drawn into it.
// All methods are safe for concurrent use; the window procedure only reaches
// it through Invalidate and Release.
type Surface struct {
	mu    sync.Mutex
	state atomic.Int32
	dirty atomic.Bool

	size   int
	window Window
	canvas *image.RGBA
	brush  *Brush
	disc   *Realization
	ring   *Realization
}

// Create opens the overlay window at pos and builds its render resources.
// It must be called on the goroutine that pumps window messages.
func Create(opener WindowOpener, pos image.Point, size int) (*Surface, error) {
	s := &Surface{size: size}

	fail := func(stage Stage, err error) (*Surface, error) {
		if rerr := s.Release(); rerr != nil {
			log.Printf("PREVIEW: cleanup after %s failure: %v", stage, rerr)
		}
		return nil, &CreateError{Stage: stage, Err: err}
	}

	w, err := opener.Open(pos, size, s)
	if err != nil {
		return fail(StageWindow, err)
	}
	s.window = w

	if size <= 0 {
		return fail(StageDevice, fmt.Errorf("invalid canvas size %d", size))
	}
	s.canvas = image.NewRGBA(image.Rect(0, 0, size, size))

	// A first transparent frame proves the target accepts our pixels.
	if err := s.window.Present(s.canvas); err != nil {
		return fail(StageTarget, err)
	}

	s.brush = newBrush()

	if s.disc, err = realizeDisc(size); err != nil {
		return fail(StageGeometry, err)
	}
	if s.ring, err = realizeRing(size); err != nil {
		return fail(StageGeometry, err)
	}

	s.state.Store(stateReady)
	log.Printf("PREVIEW: surface ready, %dx%d at (%d,%d)", size, size, pos.X, pos.Y)
	return s, nil
}

func (s *Surface) checkReady() error {
	switch s.state.Load() {
	case stateReady:
		return nil
	case stateReleased:
		return ErrReleased
	default:
		return ErrNotReady
	}
}

// Update sets the brush to c. It reports false, and leaves the brush alone,
// when the brush already shows c in all three channels.
func (s *Surface) Update(c colormodel.Color) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReady(); err != nil {
		return false, err
	}
	if s.brush.Matches(c) {
		return false, nil
	}
	s.brush.SetColor(c.RGBA())
	return true, nil
}

// Color returns the color currently held by the brush.
func (s *Surface) Color() (color.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReady(); err != nil {
		return color.RGBA{}, err
	}
	return s.brush.Color(), nil
}

// Render draws one frame: transparent background, disc in the brush color,
// dark outline, then presents it.
func (s *Surface) Render() error {
	s.mu.Lock()
	if err := s.checkReady(); err != nil {
		s.mu.Unlock()
		return err
	}

	draw.Draw(s.canvas, s.canvas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	s.disc.Fill(s.canvas, s.brush.Color())

	current := s.brush.Color()
	s.brush.SetColor(contrastColor)
	s.ring.Fill(s.canvas, s.brush.Color())
	s.brush.SetColor(current)

	frame := image.NewRGBA(s.canvas.Bounds())
	copy(frame.Pix, s.canvas.Pix)
	w := s.window
	s.dirty.Store(false)
	s.mu.Unlock()

	// Presenting may wait on the window's thread, same as MoveTo.
	return w.Present(frame)
}

// MoveTo positions the window's top-left corner at p.
func (s *Surface) MoveTo(p image.Point) error {
	s.mu.Lock()
	if err := s.checkReady(); err != nil {
		s.mu.Unlock()
		return err
	}
	w := s.window
	s.mu.Unlock()

	// Moving may wait on the window's thread, which can itself be waiting to
	// enter Release; don't hold the lock across it.
	return w.Move(p)
}

// Invalidate marks the current frame stale, e.g. after the window was
// uncovered. The next tick re-renders.
func (s *Surface) Invalidate() {
	s.dirty.Store(true)
}

// NeedsRender reports whether Invalidate was called since the last Render.
func (s *Surface) NeedsRender() bool {
	return s.dirty.Load()
}

// Size returns the window edge length.
func (s *Surface) Size() int { return s.size }

// Release frees the render resources and closes the window. Only the first
// call does anything; it is safe on a partially created surface.
func (s *Surface) Release() error {
	if s.state.Load() == stateReleased {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Load() == stateReleased {
		return nil
	}
	s.state.Store(stateReleased)

	s.brush = nil
	s.disc = nil
	s.ring = nil
	s.canvas = nil

	var err error
	if s.window != nil {
		err = s.window.Close()
		s.window = nil
	}
	log.Printf("PREVIEW: surface released")
	return err
}
