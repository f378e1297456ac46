package input

import (
	"errors"
	"sync"
)

// ErrHookBusy is returned when a second hook is installed while one is active.
var ErrHookBusy = errors.New("a pointer hook is already installed")

// The OS calls back into a single trampoline, so the active handler lives
// here instead of being smuggled through the hook.
var (
	hookMu        sync.Mutex
	activeHandler Handler
)

func claimHook(h Handler) error {
	hookMu.Lock()
	defer hookMu.Unlock()
	if activeHandler != nil {
		return ErrHookBusy
	}
	activeHandler = h
	return nil
}

func releaseHook() {
	hookMu.Lock()
	activeHandler = nil
	hookMu.Unlock()
}

func currentHandler() Handler {
	hookMu.Lock()
	defer hookMu.Unlock()
	return activeHandler
}
