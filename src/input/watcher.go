package input

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"wcolor/src/cursor"
)

var (
	// ErrHookInstallFailed wraps the platform error when the global hook could
	// not be installed. Without the hook the session could never end.
	ErrHookInstallFailed = errors.New("pointer hook install failed")
	ErrAlreadyStarted    = errors.New("watcher already started")
)

// Watcher owns one pointer hook for the lifetime of a picking session. The
// first primary button press ends the session: the click is consumed and the
// pump is asked to quit.
type Watcher struct {
	pump Pump
	done chan struct{}

	started    atomic.Bool
	terminated atomic.Bool
	quitOnce   sync.Once

	mu      sync.Mutex
	pos     image.Point
	seenPos bool
	err     error
}

func NewWatcher(p Pump) *Watcher {
	return &Watcher{pump: p, done: make(chan struct{})}
}

// Start installs the hook on a dedicated OS thread and returns once the
// install succeeded or failed. Cancelling ctx quits the pump.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	installed := make(chan error, 1)
	go w.run(ctx, installed)
	return <-installed
}

func (w *Watcher) run(ctx context.Context, installed chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	if err := w.pump.Install(w); err != nil {
		installed <- fmt.Errorf("%w: %w", ErrHookInstallFailed, err)
		return
	}
	log.Printf("HOOK: installed")
	installed <- nil

	stop := context.AfterFunc(ctx, w.quit)
	defer stop()

	runErr := w.pump.Run()
	uninstallErr := w.pump.Uninstall()
	log.Printf("HOOK: pump exited (terminated=%v), uninstalled", w.terminated.Load())

	w.mu.Lock()
	w.err = errors.Join(runErr, uninstallErr)
	w.mu.Unlock()
}

func (w *Watcher) quit() {
	w.quitOnce.Do(w.pump.Quit)
}

// OnEvent implements Handler.
func (w *Watcher) OnEvent(ev Event) Verdict {
	if ev.Code < 0 {
		return PassThrough
	}

	w.mu.Lock()
	w.pos = ev.Point
	w.seenPos = true
	w.mu.Unlock()

	if ev.Action != ActionPrimaryDown {
		return PassThrough
	}
	if !w.terminated.CompareAndSwap(false, true) {
		return PassThrough
	}
	log.Printf("HOOK: primary button down at (%d,%d)", ev.Point.X, ev.Point.Y)
	w.quit()
	return Consume
}

// Done is closed once the pump has exited and the hook is uninstalled.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Terminated reports whether the confirming click was observed.
func (w *Watcher) Terminated() bool { return w.terminated.Load() }

// Err returns the pump or uninstall error after Done is closed.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Position returns the last pointer location seen by the hook.
func (w *Watcher) Position() (image.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.seenPos {
		return image.Point{}, cursor.ErrUnavailable
	}
	return w.pos, nil
}
