package physics

import "time"

// Hooks receives simulation events. Implementations must be cheap: they run
// inside the tick.
type Hooks interface {
	OnTick(nodes, edges int, duration time.Duration)
	OnReset(reason string)
}

// NoopHooks is a no-op implementation of Hooks.
type NoopHooks struct{}

func (NoopHooks) OnTick(int, int, time.Duration) {}
func (NoopHooks) OnReset(string)                 {}

// Reset reasons reported through Hooks.OnReset.
const (
	ResetData    = "data"
	ResetShuffle = "shuffle"
)
