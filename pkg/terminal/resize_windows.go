//go:build windows

package terminal

import "time"

// windows has no SIGWINCH, so poll
func (p *TTY) watch() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	last := p.Size()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if s := p.Size(); s != last {
				last = s
				p.publish(s)
			}
		}
	}
}
