package tmpl

import (
	"math"
	"strings"
	"time"
)

// Bar is a standalone progress bar built from a BarConfig. It tracks
// speed and ETA from the updates it receives.
type Bar struct {
	Config BarConfig

	now        func() time.Time
	progress   float64
	current    int
	total      int
	start      time.Time
	lastUpdate time.Time
	speed      float64
	eta        time.Duration
}

// BarOption configures a Bar
type BarOption func(*Bar)

// WithClock replaces time.Now
func WithClock(now func() time.Time) BarOption {
	return func(b *Bar) { b.now = now }
}

// NewBar starts a bar at zero
func NewBar(cfg BarConfig, opts ...BarOption) *Bar {
	b := &Bar{Config: cfg, now: time.Now, total: 1}
	for _, opt := range opts {
		opt(b)
	}
	b.start = b.now()
	b.lastUpdate = b.start
	return b
}

// Update sets the completed fraction, clamped to [0,1]. The fraction
// shown is rounded against the current total.
func (b *Bar) Update(progress float64) {
	if math.IsNaN(progress) || progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	b.current = int(math.Round(progress * float64(b.total)))
	b.set(progress)
}

func (b *Bar) set(progress float64) {
	now := b.now()
	if dt := now.Sub(b.lastUpdate).Seconds(); dt > 0 {
		b.speed = (progress - b.progress) / dt
	}
	b.progress = progress
	b.lastUpdate = now

	b.eta = 0
	if b.speed > 0 && progress < 1 {
		b.eta = time.Duration((1 - progress) / b.speed * float64(time.Second))
	}
}

// UpdateWithValues sets current out of total; total is at least one
func (b *Bar) UpdateWithValues(current, total int) {
	if total < 1 {
		total = 1
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	b.current = current
	b.total = total
	b.set(float64(current) / float64(total))
}

// Progress is the completed fraction
func (b *Bar) Progress() float64 { return b.progress }

// Percentage is Progress scaled to 0..100
func (b *Bar) Percentage() float64 { return b.progress * 100 }

// Speed is the fraction completed per second at the last update
func (b *Bar) Speed() float64 { return b.speed }

// ETA is the estimated time left, zero when unknown or done
func (b *Bar) ETA() time.Duration { return b.eta }

// Elapsed is the time since the bar was created
func (b *Bar) Elapsed() time.Duration { return b.now().Sub(b.start) }

// Context binds progress, percent, completed, total, eta and elapsed
func (b *Bar) Context() *Context {
	return NewContext().
		Num("progress", b.progress).
		Num("percent", b.Percentage()).
		Int("completed", b.current).
		Int("total", b.total).
		Text("eta", b.eta.Round(time.Second).String()).
		Text("elapsed", b.Elapsed().Round(time.Second).String())
}

// Render draws the bar with e
func (b *Bar) Render(e *Engine) (string, error) {
	t, err := b.Config.Parse(e)
	if err != nil {
		return "", err
	}
	return t.RenderE(b.Context())
}

// MultiBar keeps a set of named bars in insertion order. It is not safe
// for concurrent use.
type MultiBar struct {
	bars  map[string]*Bar
	order []string
}

// NewMultiBar is empty
func NewMultiBar() *MultiBar {
	return &MultiBar{bars: make(map[string]*Bar)}
}

// Add stores bar under id. Replacing an existing id keeps its position.
func (m *MultiBar) Add(id string, bar *Bar) {
	if _, ok := m.bars[id]; !ok {
		m.order = append(m.order, id)
	}
	m.bars[id] = bar
}

// Remove drops id and returns its bar
func (m *MultiBar) Remove(id string) (*Bar, bool) {
	bar, ok := m.bars[id]
	if !ok {
		return nil, false
	}
	delete(m.bars, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return bar, true
}

// Get looks up a bar
func (m *MultiBar) Get(id string) (*Bar, bool) {
	bar, ok := m.bars[id]
	return bar, ok
}

// Update sets the fraction of id; unknown ids are ignored
func (m *MultiBar) Update(id string, progress float64) bool {
	bar, ok := m.bars[id]
	if ok {
		bar.Update(progress)
	}
	return ok
}

// UpdateWithValues sets current out of total for id
func (m *MultiBar) UpdateWithValues(id string, current, total int) bool {
	bar, ok := m.bars[id]
	if ok {
		bar.UpdateWithValues(current, total)
	}
	return ok
}

// Len is the number of bars
func (m *MultiBar) Len() int { return len(m.order) }

// IDs lists the bars in display order
func (m *MultiBar) IDs() []string {
	return append([]string(nil), m.order...)
}

// Render draws every bar on its own line, in insertion order
func (m *MultiBar) Render(e *Engine) (string, error) {
	var b strings.Builder
	for _, id := range m.order {
		line, err := m.bars[id].Render(e)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
