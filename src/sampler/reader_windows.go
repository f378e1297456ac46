//go:build windows

package sampler

import (
	"errors"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"wcolor/src/colormodel"
)

const clrInvalid = 0xFFFFFFFF

var (
	gdi32        = windows.NewLazySystemDLL("gdi32.dll")
	procGetPixel = gdi32.NewProc("GetPixel")
)

// gdiReader holds the screen DC for the whole session.
type gdiReader struct {
	hdc win.HDC
}

func openPlatformReader() (Reader, error) {
	if err := procGetPixel.Find(); err != nil {
		return nil, err
	}
	hdc := win.GetDC(0)
	if hdc == 0 {
		return nil, errors.New("GetDC(NULL) failed")
	}
	return &gdiReader{hdc: hdc}, nil
}

func (r *gdiReader) Pixel(x, y int) (colormodel.Color, error) {
	ref, _, _ := procGetPixel.Call(uintptr(r.hdc), uintptr(int32(x)), uintptr(int32(y)))
	if uint32(ref) == clrInvalid {
		return 0, ErrSampleUnavailable
	}
	return colormodel.FromCOLORREF(uint32(ref)), nil
}

func (r *gdiReader) Close() error {
	if r.hdc == 0 {
		return nil
	}
	win.ReleaseDC(0, r.hdc)
	r.hdc = 0
	return nil
}
