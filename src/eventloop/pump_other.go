//go:build !windows

package eventloop

import "sync"

// waitPump has no messages to dispatch; it only waits for Quit.
type waitPump struct {
	quit chan struct{}
	once sync.Once
}

func newPlatformPump() Pump {
	return &waitPump{quit: make(chan struct{})}
}

func (p *waitPump) Prepare() error { return nil }

func (p *waitPump) Run() error {
	<-p.quit
	return nil
}

func (p *waitPump) Quit() {
	p.once.Do(func() { close(p.quit) })
}
