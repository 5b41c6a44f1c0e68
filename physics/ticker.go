package physics

import (
	"sync"
	"time"
)

// DefaultFrameInterval is roughly one display frame at 60 Hz.
const DefaultFrameInterval = time.Second / 60

// TickSource schedules a recurring callback. Schedule must not invoke tick
// synchronously; cancel stops further calls and may be called repeatedly.
type TickSource interface {
	Schedule(tick func()) (cancel func())
}

// FrameTicker fires tick on a fixed interval from its own goroutine.
type FrameTicker struct {
	Interval time.Duration
}

// NewFrameTicker creates a ticker running at fps frames per second.
func NewFrameTicker(fps int) *FrameTicker {
	if fps <= 0 {
		return &FrameTicker{Interval: DefaultFrameInterval}
	}
	return &FrameTicker{Interval: time.Second / time.Duration(fps)}
}

// Schedule implements TickSource.
func (f *FrameTicker) Schedule(tick func()) func() {
	interval := f.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	done := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				tick()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ManualTicker only ticks when Step is called. It stands in for a frame
// loop in tests and in batch layout.
type ManualTicker struct {
	mu   sync.Mutex
	tick func()
	gen  uint64
}

// Schedule implements TickSource. A new schedule replaces the previous one.
func (m *ManualTicker) Schedule(tick func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	gen := m.gen
	m.tick = tick
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen == gen {
			m.tick = nil
		}
	}
}

// Scheduled reports whether a callback is currently registered.
func (m *ManualTicker) Scheduled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick != nil
}

// Step fires the scheduled callback up to n times and returns how many
// ticks ran. It stops early once the schedule is cancelled.
func (m *ManualTicker) Step(n int) int {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fn := m.tick
		m.mu.Unlock()
		if fn == nil {
			return i
		}
		fn()
	}
	return n
}
