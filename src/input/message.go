package input

// Low-level mouse hook message identifiers (wParam of a WH_MOUSE_LL callback).
const (
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
)

// mouseAction maps a hook message to the action the watcher cares about.
func mouseAction(msg uint32) Action {
	switch msg {
	case wmLButtonDown:
		return ActionPrimaryDown
	case wmMouseMove:
		return ActionMove
	default:
		return ActionOther
	}
}

// hookResult is what the hook procedure returns for a verdict. A non-zero
// value stops the event; otherwise the rest of the chain decides.
func hookResult(v Verdict, callNext func() uintptr) uintptr {
	if v == Consume {
		return 1
	}
	return callNext()
}
