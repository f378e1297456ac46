package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Pump is the host thread's message loop.
type Pump interface {
	// Prepare binds the pump to the calling OS thread. It must run on the
	// same thread as Run, before any goroutine may call Quit.
	Prepare() error
	// Run dispatches messages until Quit is called.
	Run() error
	// Quit may be called from any goroutine, any number of times.
	Quit()
}

// Loop is the single-threaded host for windows created on the main thread.
// It pumps their messages while the picking session runs elsewhere.
type Loop struct {
	pump Pump
}

// New creates a loop around the platform message pump.
func New() *Loop {
	return &Loop{pump: newPlatformPump()}
}

// NewWithPump creates a loop around p.
func NewWithPump(p Pump) *Loop {
	return &Loop{pump: p}
}

// Run runs work on its own goroutine and pumps messages on the calling one
// until work returns. Cancelling ctx only cancels work: its windows may still
// need the pump while it winds down. The caller must hold its OS thread
// (runtime.LockOSThread) and be the thread that created the windows.
func (l *Loop) Run(ctx context.Context, work func(ctx context.Context) error) error {
	if work == nil {
		return errors.New("work is required")
	}
	if err := l.pump.Prepare(); err != nil {
		return fmt.Errorf("host message loop: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		err := work(ctx)
		result <- err
		l.pump.Quit()
	}()

	pumpErr := l.pump.Run()
	if pumpErr != nil {
		log.Printf("EVENTLOOP: message pump stopped: %v", pumpErr)
		cancel()
	}
	workErr := <-result
	return errors.Join(workErr, pumpErr)
}
