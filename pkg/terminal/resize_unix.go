//go:build !windows

package terminal

import (
	"os"
	"os/signal"
	"syscall"
)

func (p *TTY) watch() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	defer signal.Stop(sig)
	for {
		select {
		case <-p.stop:
			return
		case <-sig:
			p.publish(p.Size())
		}
	}
}
