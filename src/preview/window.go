package preview

import "image"

// Window is the presentation target: a borderless, always-on-top,
// click-through overlay that never takes focus.
type Window interface {
	// Present shows frame, whose pixels are premultiplied RGBA.
	Present(frame *image.RGBA) error
	// Move repositions the window without resizing, activating or redrawing it.
	Move(p image.Point) error
	// Close destroys the window. It may complete asynchronously on the
	// thread that owns the window.
	Close() error
}

// WindowEvents is what the window procedure may call back into.
type WindowEvents interface {
	Invalidate()
	Release() error
}

// WindowOpener creates overlay windows.
type WindowOpener interface {
	Open(pos image.Point, size int, events WindowEvents) (Window, error)
}

// NewPlatformOpener returns the overlay implementation for this platform.
func NewPlatformOpener() WindowOpener {
	return platformOpener{}
}
