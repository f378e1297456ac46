package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wcolor/src/colormodel"
	"wcolor/src/cursor"
	"wcolor/src/input"
	"wcolor/src/preview"
	"wcolor/src/sampler"
)

var green = colormodel.Pack(0, 255, 0)

type screenReader struct {
	mu     sync.Mutex
	pixels map[image.Point]colormodel.Color
	fails  int
}

func (r *screenReader) Pixel(x, y int) (colormodel.Color, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails > 0 {
		r.fails--
		return 0, errors.New("device busy")
	}
	return r.pixels[image.Pt(x, y)], nil
}

func (r *screenReader) Close() error { return nil }

func greenScreen() *sampler.Sampler {
	return sampler.New(&screenReader{pixels: map[image.Point]colormodel.Color{
		image.Pt(10, 10): green,
	}})
}

// clickPump delivers one move and one primary press to whatever handler the
// watcher installs.
type clickPump struct {
	at      image.Point
	quit    chan struct{}
	handler input.Handler
}

func newClickPump(at image.Point) *clickPump {
	return &clickPump{at: at, quit: make(chan struct{})}
}

func (p *clickPump) Install(h input.Handler) error {
	p.handler = h
	return nil
}

func (p *clickPump) Run() error {
	p.handler.OnEvent(input.Event{Action: input.ActionMove, Point: p.at})
	p.handler.OnEvent(input.Event{Action: input.ActionPrimaryDown, Point: p.at})
	<-p.quit
	return nil
}

func (p *clickPump) Quit() {
	select {
	case <-p.quit:
	default:
		close(p.quit)
	}
}

func (p *clickPump) Uninstall() error { return nil }

type fakeWindow struct {
	mu    sync.Mutex
	moves []image.Point
}

func (w *fakeWindow) Present(*image.RGBA) error { return nil }

func (w *fakeWindow) Move(p image.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.moves = append(w.moves, p)
	return nil
}

func (w *fakeWindow) Close() error { return nil }

type fakeOpener struct{ window *fakeWindow }

func (o fakeOpener) Open(image.Point, int, preview.WindowEvents) (preview.Window, error) {
	return o.window, nil
}

type recordingTarget struct {
	successes []Result
	failures  []error
}

func (t *recordingTarget) OnSuccess(res Result) error {
	t.successes = append(t.successes, res)
	return nil
}

func (t *recordingTarget) OnFailure(err error) error {
	t.failures = append(t.failures, err)
	return nil
}

func TestExecuteEndToEnd(t *testing.T) {
	tests := []struct {
		name   string
		format colormodel.Format
		want   string
	}{
		{"Hex", colormodel.FormatHexUpper, "#00FF00\n"},
		{"RGB", colormodel.FormatRGB, "0, 255, 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := &fakeWindow{}
			surface, err := preview.Create(fakeOpener{window: window}, image.Pt(30, 30), 24)
			if err != nil {
				t.Fatalf("preview.Create: %v", err)
			}

			var out bytes.Buffer
			var doneCalls atomic.Int32
			res, err := Execute(context.Background(), Options{
				Format:       tt.format,
				Surface:      surface,
				Sampler:      greenScreen(),
				Cursor:       cursor.Fixed(image.Pt(10, 10)),
				Watcher:      input.NewWatcher(newClickPump(image.Pt(10, 10))),
				Targets:      []ResultTarget{StdoutTarget{Writer: &out}},
				TickInterval: time.Millisecond,
				OnDone:       func() { doneCalls.Add(1) },
			})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("stdout = %q, want %q", out.String(), tt.want)
			}
			if res.Color != green {
				t.Errorf("Color = %v, want %v", res.Color, green)
			}
			if doneCalls.Load() != 1 {
				t.Errorf("OnDone called %d times, want 1", doneCalls.Load())
			}
			if _, err := surface.Update(green); !errors.Is(err, preview.ErrReleased) {
				t.Errorf("surface not released: %v", err)
			}
		})
	}
}

type fakeWatcher struct {
	done       chan struct{}
	terminated atomic.Bool
	startErr   error
	err        error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{done: make(chan struct{})}
}

func (w *fakeWatcher) Start(ctx context.Context) error {
	if w.startErr != nil {
		return w.startErr
	}
	context.AfterFunc(ctx, func() { w.finish(false) })
	return nil
}

func (w *fakeWatcher) finish(clicked bool) {
	if clicked {
		w.terminated.Store(true)
	}
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *fakeWatcher) Done() <-chan struct{} { return w.done }
func (w *fakeWatcher) Terminated() bool      { return w.terminated.Load() }
func (w *fakeWatcher) Err() error            { return w.err }

type fakeSurface struct {
	mu       sync.Mutex
	updates  int
	renders  int
	moves    []image.Point
	dirty    bool
	released int
	last     colormodel.Color
	set      bool
}

func (s *fakeSurface) Update(c colormodel.Color) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.set && s.last == c {
		return false, nil
	}
	s.last, s.set = c, true
	return true, nil
}

func (s *fakeSurface) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	s.dirty = false
	return nil
}

func (s *fakeSurface) NeedsRender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *fakeSurface) MoveTo(p image.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = append(s.moves, p)
	return nil
}

func (s *fakeSurface) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
	return nil
}

func (s *fakeSurface) snapshot() (renders int, moves []image.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders, append([]image.Point(nil), s.moves...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExecuteTracksCursorWithOffset(t *testing.T) {
	w := newFakeWatcher()
	s := &fakeSurface{}
	var out bytes.Buffer

	errCh := make(chan error, 1)
	go func() {
		_, err := Execute(context.Background(), Options{
			Format:       colormodel.FormatHexUpper,
			Surface:      s,
			Sampler:      greenScreen(),
			Cursor:       cursor.Fixed(image.Pt(10, 10)),
			Watcher:      w,
			Targets:      []ResultTarget{StdoutTarget{Writer: &out}},
			TickInterval: time.Millisecond,
		})
		errCh <- err
	}()

	waitFor(t, func() bool {
		_, moves := s.snapshot()
		return len(moves) >= 3
	})
	w.finish(true)
	if err := <-errCh; err != nil {
		t.Fatalf("Execute: %v", err)
	}

	renders, moves := s.snapshot()
	if renders != 1 {
		t.Errorf("rendered %d times for an unchanged color, want 1", renders)
	}
	for _, p := range moves {
		if p != image.Pt(20, 25) {
			t.Fatalf("moved to %v, want (20,25)", p)
		}
	}
	if s.released != 1 {
		t.Errorf("released %d times, want 1", s.released)
	}
	if out.String() != "#00FF00\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestExecuteRerendersInvalidatedSurface(t *testing.T) {
	w := newFakeWatcher()
	s := &fakeSurface{}

	errCh := make(chan error, 1)
	go func() {
		_, err := Execute(context.Background(), Options{
			Surface:      s,
			Sampler:      greenScreen(),
			Cursor:       cursor.Fixed(image.Pt(10, 10)),
			Watcher:      w,
			TickInterval: time.Millisecond,
		})
		errCh <- err
	}()

	waitFor(t, func() bool { r, _ := s.snapshot(); return r == 1 })
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	waitFor(t, func() bool { r, _ := s.snapshot(); return r == 2 })

	w.finish(true)
	if err := <-errCh; err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestExecuteCancelPrintsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := newFakeWatcher()
	s := &fakeSurface{}
	target := &recordingTarget{}
	var out bytes.Buffer
	var doneCalls atomic.Int32

	errCh := make(chan error, 1)
	go func() {
		_, err := Execute(ctx, Options{
			Surface:      s,
			Sampler:      greenScreen(),
			Cursor:       cursor.Fixed(image.Pt(10, 10)),
			Watcher:      w,
			Targets:      []ResultTarget{StdoutTarget{Writer: &out}, target},
			TickInterval: time.Millisecond,
			OnDone:       func() { doneCalls.Add(1) },
		})
		errCh <- err
	}()

	waitFor(t, func() bool { _, m := s.snapshot(); return len(m) > 0 })
	cancel()

	if err := <-errCh; !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", out.String())
	}
	if len(target.successes) != 0 || len(target.failures) != 1 {
		t.Errorf("target saw %d successes, %d failures", len(target.successes), len(target.failures))
	}
	if s.released != 1 || doneCalls.Load() != 1 {
		t.Errorf("released %d, OnDone %d; want 1 and 1", s.released, doneCalls.Load())
	}
}

func TestExecuteWatcherStartFailure(t *testing.T) {
	installErr := errors.New("hook refused")
	w := newFakeWatcher()
	w.startErr = installErr
	s := &fakeSurface{}
	var out bytes.Buffer

	_, err := Execute(context.Background(), Options{
		Surface: s,
		Sampler: greenScreen(),
		Cursor:  cursor.Fixed(image.Pt(10, 10)),
		Watcher: w,
		Targets: []ResultTarget{StdoutTarget{Writer: &out}},
	})
	if !errors.Is(err, installErr) {
		t.Fatalf("expected install error, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", out.String())
	}
	if s.released != 1 {
		t.Errorf("surface released %d times, want 1", s.released)
	}
}

func TestExecuteWatcherFailureAfterStart(t *testing.T) {
	w := newFakeWatcher()
	w.err = errors.New("message loop died")
	w.finish(false)

	_, err := Execute(context.Background(), Options{
		Sampler: greenScreen(),
		Cursor:  cursor.Fixed(image.Pt(10, 10)),
		Watcher: w,
	})
	if err == nil || errors.Is(err, ErrCancelled) {
		t.Fatalf("expected watcher error, got %v", err)
	}
	if !strings.Contains(err.Error(), "message loop died") {
		t.Errorf("error %q does not carry the cause", err)
	}
}

func TestExecuteSkipsUnavailableSamples(t *testing.T) {
	reader := &screenReader{
		pixels: map[image.Point]colormodel.Color{image.Pt(10, 10): green},
		fails:  3,
	}
	w := newFakeWatcher()
	s := &fakeSurface{}

	errCh := make(chan error, 1)
	go func() {
		_, err := Execute(context.Background(), Options{
			Surface:      s,
			Sampler:      sampler.New(reader),
			Cursor:       cursor.Fixed(image.Pt(10, 10)),
			Watcher:      w,
			TickInterval: time.Millisecond,
		})
		errCh <- err
	}()

	waitFor(t, func() bool { r, _ := s.snapshot(); return r == 1 })
	w.finish(true)
	if err := <-errCh; err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestExecuteFinalReadRetriesOnce(t *testing.T) {
	reader := &screenReader{
		pixels: map[image.Point]colormodel.Color{image.Pt(10, 10): green},
		fails:  1,
	}
	w := newFakeWatcher()
	w.finish(true)
	var out bytes.Buffer

	_, err := Execute(context.Background(), Options{
		Format:  colormodel.FormatRGB,
		Sampler: sampler.New(reader),
		Cursor:  cursor.Fixed(image.Pt(10, 10)),
		Watcher: w,
		Targets: []ResultTarget{StdoutTarget{Writer: &out}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "0, 255, 0\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestExecuteFinalReadGivesUp(t *testing.T) {
	reader := &screenReader{fails: 2}
	w := newFakeWatcher()
	w.finish(true)
	var out bytes.Buffer

	_, err := Execute(context.Background(), Options{
		Sampler: sampler.New(reader),
		Cursor:  cursor.Fixed(image.Pt(10, 10)),
		Watcher: w,
		Targets: []ResultTarget{StdoutTarget{Writer: &out}},
	})
	if !errors.Is(err, sampler.ErrSampleUnavailable) {
		t.Fatalf("expected ErrSampleUnavailable, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", out.String())
	}
}

func TestExecuteRequiresCollaborators(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"NoSampler", Options{Cursor: cursor.Fixed{}, Watcher: newFakeWatcher()}},
		{"NoCursor", Options{Sampler: greenScreen(), Watcher: newFakeWatcher()}},
		{"NoWatcher", Options{Sampler: greenScreen(), Cursor: cursor.Fixed{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Execute(context.Background(), tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSwatchTarget(t *testing.T) {
	var buf bytes.Buffer
	err := SwatchTarget{Writer: &buf}.OnSuccess(Result{Color: green, Point: image.Pt(3, 4), Text: "#00FF00"})
	if err != nil {
		t.Fatalf("OnSuccess: %v", err)
	}
	if !strings.Contains(buf.String(), "#00FF00 at (3,4)") {
		t.Errorf("swatch line = %q", buf.String())
	}
}
