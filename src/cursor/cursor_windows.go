//go:build windows

package cursor

import (
	"image"

	"github.com/lxn/win"
)

type systemCursor struct{}

func platformSource() (Source, bool) { return systemCursor{}, true }

func (systemCursor) Position() (image.Point, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, ErrUnavailable
	}
	return image.Pt(int(pt.X), int(pt.Y)), nil
}
