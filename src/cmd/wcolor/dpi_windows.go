//go:build windows

package main

import (
	"fmt"
	"log"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const processPerMonitorDPIAware = 2

var procSetProcessDpiAwareness = windows.NewLazySystemDLL("Shcore.dll").NewProc("SetProcessDpiAwareness")

// enableDPIAwareness makes GetCursorPos and GetPixel agree on scaled
// displays. It must run before any window is created.
func enableDPIAwareness() error {
	if err := procSetProcessDpiAwareness.Find(); err != nil {
		return fmt.Errorf("SetProcessDpiAwareness unavailable: %w", err)
	}
	hr, _, _ := procSetProcessDpiAwareness.Call(processPerMonitorDPIAware)
	// E_ACCESSDENIED means a manifest already set the awareness.
	if hr != 0 && uint32(hr) != uint32(windows.E_ACCESSDENIED) {
		return fmt.Errorf("SetProcessDpiAwareness: HRESULT %#x", uint32(hr))
	}
	return nil
}

func logMonitorConfiguration() {
	log.Printf("MONITOR: %d monitors, virtual screen x:%d y:%d w:%d h:%d",
		win.GetSystemMetrics(win.SM_CMONITORS),
		win.GetSystemMetrics(win.SM_XVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN))
}
