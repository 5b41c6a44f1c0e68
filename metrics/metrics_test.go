package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/TFMV/pivotgraph/physics"
)

var _ physics.Hooks = SimulationHooks{}

func TestSimulationHooksOnTick(t *testing.T) {
	before := testutil.ToFloat64(TicksTotal)

	h := SimulationHooks{}
	h.OnTick(12, 30, 2*time.Millisecond)
	h.OnTick(7, 3, time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(TicksTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(SimulatedNodes))
}

func TestSimulationHooksOnReset(t *testing.T) {
	shuffle := ResetsTotal.WithLabelValues(physics.ResetShuffle)
	before := testutil.ToFloat64(shuffle)

	SimulationHooks{}.OnReset(physics.ResetShuffle)
	assert.Equal(t, before+1, testutil.ToFloat64(shuffle))
}

func TestSimulationHooksDriveCollectorsFromSimulation(t *testing.T) {
	before := testutil.ToFloat64(TicksTotal)
	ticker := &physics.ManualTicker{}
	sim := physics.NewSimulation(ticker, physics.WithHooks(SimulationHooks{}))
	defer sim.Destroy()

	sim.SetData(nil, nil)
	sim.Start()
	ticker.Step(4)

	assert.Equal(t, before+4, testutil.ToFloat64(TicksTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(SimulatedNodes))
}
