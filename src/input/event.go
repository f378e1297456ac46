// Package input watches system-wide pointer input for the click that ends a
// picking session.
package input

import "image"

type Action int

const (
	ActionOther Action = iota
	ActionMove
	ActionPrimaryDown
)

// Event is one pointer notification delivered by a hook. A negative Code is a
// chain notification the handler must not interpret.
type Event struct {
	Code   int32
	Action Action
	Point  image.Point
}

// Verdict tells the pump whether to forward an event down the hook chain.
type Verdict int

const (
	PassThrough Verdict = iota
	Consume
)

// Handler receives hook events on the pump thread.
type Handler interface {
	OnEvent(ev Event) Verdict
}

// Pump installs a global pointer hook and pumps the events that drive it.
// Install, Run and Uninstall are called on the same locked OS thread; Quit
// may be called from any goroutine.
type Pump interface {
	Install(h Handler) error
	Run() error
	Quit()
	Uninstall() error
}
