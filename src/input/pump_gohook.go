//go:build !windows

package input

import (
	"errors"
	"image"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// libuiohook MOUSE_BUTTON1
const primaryButton = 1

// gohookPump observes pointer events through libuiohook. The library cannot
// suppress events, so a Consume verdict is only logged.
type gohookPump struct {
	events   chan gohook.Event
	handler  Handler
	quit     chan struct{}
	quitOnce sync.Once
	warnOnce sync.Once
}

// NewPlatformPump returns the gohook pump.
func NewPlatformPump() Pump {
	return &gohookPump{quit: make(chan struct{})}
}

func (p *gohookPump) Install(h Handler) error {
	if err := claimHook(h); err != nil {
		return err
	}
	evChan := gohook.Start()
	if evChan == nil {
		releaseHook()
		return errors.New("gohook.Start() returned nil channel")
	}
	p.events = evChan
	p.handler = h
	return nil
}

func (p *gohookPump) Run() error {
	for {
		select {
		case <-p.quit:
			return nil
		case ev, ok := <-p.events:
			if !ok {
				return errors.New("hook event channel closed")
			}
			if p.handler.OnEvent(translate(ev)) == Consume {
				p.warnOnce.Do(func() {
					log.Printf("HOOK: click observed; this platform cannot suppress it")
				})
			}
		}
	}
}

func (p *gohookPump) Quit() {
	p.quitOnce.Do(func() { close(p.quit) })
}

func (p *gohookPump) Uninstall() error {
	if p.events == nil {
		return nil
	}
	gohook.End()
	p.events = nil
	releaseHook()
	return nil
}

func translate(ev gohook.Event) Event {
	out := Event{Point: image.Pt(int(ev.X), int(ev.Y))}
	switch ev.Kind {
	case gohook.MouseHold:
		if ev.Button == primaryButton {
			out.Action = ActionPrimaryDown
		}
	case gohook.MouseMove, gohook.MouseDrag:
		out.Action = ActionMove
	}
	return out
}
