package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"wcolor/src/colormodel"
	"wcolor/src/cursor"
	"wcolor/src/sampler"
)

var ErrCancelled = errors.New("color pick cancelled")

const (
	DefaultTickInterval = 5 * time.Millisecond
	finalReadAttempts   = 2
)

// DefaultOffset keeps the preview clear of the cursor hotspot while tracking.
var DefaultOffset = image.Pt(10, 15)

// Surface is the preview overlay as seen by the tick loop.
type Surface interface {
	Update(c colormodel.Color) (bool, error)
	Render() error
	NeedsRender() bool
	MoveTo(p image.Point) error
	Release() error
}

type Sampler interface {
	Read(p image.Point) (colormodel.Color, error)
	ReadRetry(p image.Point, attempts int) (colormodel.Color, error)
}

// Watcher reports when the user has picked a point.
type Watcher interface {
	Start(ctx context.Context) error
	Done() <-chan struct{}
	Terminated() bool
	Err() error
}

type ResultTarget interface {
	OnSuccess(res Result) error
	OnFailure(err error) error
}

type Options struct {
	Format  colormodel.Format
	Surface Surface
	Sampler Sampler
	Cursor  cursor.Source
	Watcher Watcher
	Targets []ResultTarget

	TickInterval time.Duration
	Offset       image.Point

	// OnDone runs after the surface is released, whatever the outcome.
	OnDone func()
}

type Result struct {
	Color colormodel.Color
	Point image.Point
	Text  string
}

func Execute(ctx context.Context, opts Options) (res Result, err error) {
	if opts.Sampler == nil {
		return Result{}, errors.New("Sampler is required")
	}
	if opts.Cursor == nil {
		return Result{}, errors.New("Cursor is required")
	}
	if opts.Watcher == nil {
		return Result{}, errors.New("Watcher is required")
	}

	defer func() {
		if opts.Surface != nil {
			if rerr := opts.Surface.Release(); rerr != nil {
				log.Printf("SESSION: release preview: %v", rerr)
			}
		}
		if opts.OnDone != nil {
			opts.OnDone()
		}
	}()

	interval := opts.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	offset := opts.Offset
	if offset == (image.Point{}) {
		offset = DefaultOffset
	}

	if err := opts.Watcher.Start(ctx); err != nil {
		notifyFailure(opts.Targets, err)
		return Result{}, err
	}

	if err := track(ctx, opts, interval, offset); err != nil {
		notifyFailure(opts.Targets, err)
		return Result{}, err
	}

	res, err = pick(opts)
	if err != nil {
		notifyFailure(opts.Targets, err)
		return Result{}, err
	}

	var deliverErrs []error
	for _, t := range opts.Targets {
		if err := t.OnSuccess(res); err != nil {
			_ = t.OnFailure(err)
			deliverErrs = append(deliverErrs, err)
		}
	}
	if err := errors.Join(deliverErrs...); err != nil {
		return res, fmt.Errorf("deliver result: %w", err)
	}
	return res, nil
}

// track runs the preview loop until the watcher finishes or ctx ends. It
// returns nil only when the user clicked.
func track(ctx context.Context, opts Options, interval time.Duration, offset image.Point) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := opts.Watcher.Done()
	for {
		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-done:
			return finished(ctx, opts.Watcher)
		default:
		}

		if err := tick(opts, offset); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-done:
			return finished(ctx, opts.Watcher)
		case <-ticker.C:
		}
	}
}

func finished(ctx context.Context, w Watcher) error {
	if w.Terminated() {
		return nil
	}
	if err := w.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("input watcher stopped: %w", err)
	}
	return ErrCancelled
}

func tick(opts Options, offset image.Point) error {
	p, err := opts.Cursor.Position()
	if err != nil {
		return nil
	}
	c, err := opts.Sampler.Read(p)
	if errors.Is(err, sampler.ErrSampleUnavailable) {
		return nil
	}
	if err != nil {
		return err
	}

	s := opts.Surface
	if s == nil {
		return nil
	}
	changed, err := s.Update(c)
	if err != nil {
		return err
	}
	if changed || s.NeedsRender() {
		if err := s.Render(); err != nil {
			return fmt.Errorf("render preview: %w", err)
		}
	}
	return s.MoveTo(p.Add(offset))
}

func pick(opts Options) (Result, error) {
	p, err := opts.Cursor.Position()
	if err != nil {
		return Result{}, fmt.Errorf("cursor position at click: %w", err)
	}
	c, err := opts.Sampler.ReadRetry(p, finalReadAttempts)
	if err != nil {
		return Result{}, err
	}
	log.Printf("SESSION: picked %s at (%d,%d)", c, p.X, p.Y)
	return Result{Color: c, Point: p, Text: opts.Format.Apply(c)}, nil
}

func notifyFailure(targets []ResultTarget, err error) {
	for _, t := range targets {
		_ = t.OnFailure(err)
	}
}
