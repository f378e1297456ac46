//go:build windows

package input

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	whMouseLL  = 14
	wmQuit     = 0x0012
	pmNoRemove = 0x0000
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")

	// Callbacks are a limited resource; one trampoline serves every hook.
	mouseHookTrampoline = windows.NewCallback(lowLevelMouseProc)
)

type msllHookStruct struct {
	Pt          win.POINT
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

func lowLevelMouseProc(nCode, wParam, lParam uintptr) uintptr {
	callNext := func() uintptr {
		ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return ret
	}
	h := currentHandler()
	if h == nil {
		return callNext()
	}

	ev := Event{Code: int32(nCode)}
	if ev.Code >= 0 {
		info := (*msllHookStruct)(unsafe.Pointer(lParam))
		ev.Point = image.Pt(int(info.Pt.X), int(info.Pt.Y))
		ev.Action = mouseAction(uint32(wParam))
	}
	return hookResult(h.OnEvent(ev), callNext)
}

// lowLevelPump is a WH_MOUSE_LL hook pumped by GetMessageW on the installing
// thread. It never dispatches: the hook only needs a live message loop.
type lowLevelPump struct {
	hook     uintptr
	threadID uint32
}

// NewPlatformPump returns the WH_MOUSE_LL pump.
func NewPlatformPump() Pump {
	return &lowLevelPump{}
}

func (p *lowLevelPump) Install(h Handler) error {
	if err := claimHook(h); err != nil {
		return err
	}

	p.threadID = windows.GetCurrentThreadId()

	// Make sure the thread has a message queue before anyone posts WM_QUIT.
	var m win.MSG
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)

	hook, _, err := procSetWindowsHookExW.Call(
		whMouseLL,
		mouseHookTrampoline,
		uintptr(win.GetModuleHandle(nil)),
		0,
	)
	if hook == 0 {
		releaseHook()
		return fmt.Errorf("SetWindowsHookExW: %w", err)
	}
	p.hook = hook
	return nil
}

func (p *lowLevelPump) Run() error {
	var m win.MSG
	for {
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(ret) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("GetMessageW: %w", err)
		}
	}
}

func (p *lowLevelPump) Quit() {
	procPostThreadMessageW.Call(uintptr(p.threadID), wmQuit, 0, 0)
}

func (p *lowLevelPump) Uninstall() error {
	if p.hook == 0 {
		return nil
	}
	ret, _, err := procUnhookWindowsHookEx.Call(p.hook)
	p.hook = 0
	releaseHook()
	if ret == 0 {
		return fmt.Errorf("UnhookWindowsHookEx: %w", err)
	}
	return nil
}
