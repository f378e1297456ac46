//go:build windows

package eventloop

import (
	"errors"
	"fmt"
	"log"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const pmNoRemove = 0x0000

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

type messagePump struct {
	threadID uint32
}

func newPlatformPump() Pump {
	return &messagePump{}
}

func (p *messagePump) Prepare() error {
	p.threadID = windows.GetCurrentThreadId()
	// Peeking creates the thread's message queue so that an early Quit is
	// not lost.
	var msg win.MSG
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmNoRemove)
	return nil
}

func (p *messagePump) Run() error {
	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 { // WM_QUIT
			log.Printf("EVENTLOOP: WM_QUIT received")
			return nil
		}
		if ret == -1 {
			return errors.New("GetMessage error")
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func (p *messagePump) Quit() {
	if p.threadID == 0 {
		return
	}
	ret, _, err := procPostThreadMessageW.Call(uintptr(p.threadID), win.WM_QUIT, 0, 0)
	if ret == 0 {
		log.Printf("EVENTLOOP: %v", fmt.Errorf("PostThreadMessage(WM_QUIT): %w", err))
	}
}
