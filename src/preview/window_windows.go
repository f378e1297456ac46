//go:build windows

package preview

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	previewClassName = "wcolor_preview"

	ulwAlpha       = 0x00000002
	acSrcOver      = 0x00
	acSrcAlpha     = 0x01
	maNoActivate   = 3
	wsExNoActivate = 0x08000000
)

var (
	errWindowClosed = errors.New("preview window closed")

	user32                  = windows.NewLazySystemDLL("user32.dll")
	procUpdateLayeredWindow = user32.NewProc("UpdateLayeredWindow")

	registerOnce sync.Once
	registerErr  error

	// The window procedure finds its window through this table rather than
	// through per-window user data.
	windowsMu sync.Mutex
	byHandle  = map[win.HWND]*layeredWindow{}
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

type platformOpener struct{}

// layeredWindow presents frames with UpdateLayeredWindow from a 32-bit
// top-down DIB section.
type layeredWindow struct {
	hwnd   atomic.Uintptr
	size   int32
	events WindowEvents

	mu        sync.Mutex
	memDC     win.HDC
	bitmap    win.HBITMAP
	oldBitmap win.HGDIOBJ
	bits      unsafe.Pointer
	destroyed bool
}

func registerPreviewClass() error {
	registerOnce.Do(func() {
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(previewWndProc),
			HInstance:     win.GetModuleHandle(nil),
			LpszClassName: syscall.StringToUTF16Ptr(previewClassName),
		}
		if atom := win.RegisterClassEx(&wc); atom == 0 {
			registerErr = fmt.Errorf("RegisterClassEx(%s) failed", previewClassName)
		}
	})
	return registerErr
}

func (platformOpener) Open(pos image.Point, size int, events WindowEvents) (Window, error) {
	if err := registerPreviewClass(); err != nil {
		return nil, err
	}

	hwnd := win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TRANSPARENT|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|wsExNoActivate,
		syscall.StringToUTF16Ptr(previewClassName),
		syscall.StringToUTF16Ptr("wcolor"),
		win.WS_POPUP|win.WS_VISIBLE,
		int32(pos.X), int32(pos.Y), int32(size), int32(size),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowEx failed: %v", windows.GetLastError())
	}

	lw := &layeredWindow{size: int32(size), events: events}
	lw.hwnd.Store(uintptr(hwnd))
	if err := lw.createDIB(); err != nil {
		win.DestroyWindow(hwnd)
		return nil, err
	}

	windowsMu.Lock()
	byHandle[hwnd] = lw
	windowsMu.Unlock()

	log.Printf("PREVIEW: layered window created, hwnd: %v", hwnd)
	return lw, nil
}

func (lw *layeredWindow) createDIB() error {
	screenDC := win.GetDC(0)
	if screenDC == 0 {
		return errors.New("GetDC(NULL) failed")
	}
	defer win.ReleaseDC(0, screenDC)

	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		return errors.New("CreateCompatibleDC failed")
	}

	header := win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       lw.size,
		BiHeight:      -lw.size, // top-down
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	var bits unsafe.Pointer
	bitmap := win.CreateDIBSection(memDC, &header, win.DIB_RGB_COLORS, &bits, 0, 0)
	if bitmap == 0 || bits == nil {
		win.DeleteDC(memDC)
		return errors.New("CreateDIBSection failed")
	}

	lw.memDC = memDC
	lw.bitmap = bitmap
	lw.bits = bits
	lw.oldBitmap = win.SelectObject(memDC, win.HGDIOBJ(bitmap))
	return nil
}

func (lw *layeredWindow) handle() win.HWND {
	return win.HWND(lw.hwnd.Load())
}

func (lw *layeredWindow) Present(frame *image.RGBA) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.destroyed {
		return errWindowClosed
	}

	// RGBA premultiplied -> BGRA premultiplied.
	n := int(lw.size) * int(lw.size) * 4
	dst := unsafe.Slice((*byte)(lw.bits), n)
	src := frame.Pix
	for i := 0; i+3 < n && i+3 < len(src); i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = src[i+3]
	}

	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)

	size := win.SIZE{CX: lw.size, CY: lw.size}
	var origin win.POINT
	blend := blendFunction{BlendOp: acSrcOver, SourceConstantAlpha: 0xff, AlphaFormat: acSrcAlpha}
	ret, _, err := procUpdateLayeredWindow.Call(
		uintptr(lw.handle()),
		uintptr(screenDC),
		0,
		uintptr(unsafe.Pointer(&size)),
		uintptr(lw.memDC),
		uintptr(unsafe.Pointer(&origin)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
	if ret == 0 {
		return fmt.Errorf("UpdateLayeredWindow: %w", err)
	}
	return nil
}

func (lw *layeredWindow) Move(p image.Point) error {
	hwnd := lw.handle()
	if hwnd == 0 {
		return errWindowClosed
	}
	flags := uint32(win.SWP_NOSIZE | win.SWP_NOZORDER | win.SWP_NOACTIVATE | win.SWP_NOREDRAW)
	if !win.SetWindowPos(hwnd, 0, int32(p.X), int32(p.Y), 0, 0, flags) {
		return fmt.Errorf("SetWindowPos: %v", windows.GetLastError())
	}
	return nil
}

// Close asks the owning thread to destroy the window; DestroyWindow only
// works there.
func (lw *layeredWindow) Close() error {
	hwnd := lw.handle()
	if hwnd == 0 {
		return nil
	}
	win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
	return nil
}

// destroy runs on the owning thread from WM_DESTROY.
func (lw *layeredWindow) destroy() {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.destroyed {
		return
	}
	lw.destroyed = true

	if lw.memDC != 0 {
		win.SelectObject(lw.memDC, lw.oldBitmap)
		win.DeleteObject(win.HGDIOBJ(lw.bitmap))
		win.DeleteDC(lw.memDC)
		lw.memDC = 0
		lw.bits = nil
	}

	hwnd := win.HWND(lw.hwnd.Swap(0))
	windowsMu.Lock()
	delete(byHandle, hwnd)
	windowsMu.Unlock()
}

func lookupWindow(hwnd win.HWND) *layeredWindow {
	windowsMu.Lock()
	defer windowsMu.Unlock()
	return byHandle[hwnd]
}

// previewWndProc forwards to the surface; it never touches render state.
func previewWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		win.BeginPaint(hwnd, &ps)
		win.EndPaint(hwnd, &ps)
		if lw := lookupWindow(hwnd); lw != nil {
			lw.events.Invalidate()
		}
		return 0

	case win.WM_MOUSEACTIVATE:
		return maNoActivate

	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_DESTROY:
		if lw := lookupWindow(hwnd); lw != nil {
			if err := lw.events.Release(); err != nil {
				log.Printf("PREVIEW: release on WM_DESTROY: %v", err)
			}
			lw.destroy()
		}
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
