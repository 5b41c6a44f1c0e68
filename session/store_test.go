package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/pivotgraph/ingest"
	"github.com/TFMV/pivotgraph/metrics"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
)

func manualSources() SourceFactory {
	return func() physics.TickSource { return &physics.ManualTicker{} }
}

func TestStoreLifecycle(t *testing.T) {
	ds, err := ingest.Sample()
	require.NoError(t, err)

	st := NewStore(manualSources(), 0, testOptions())
	defer st.Close()

	a, err := st.Create(ds)
	require.NoError(t, err)
	b, err := st.Create(ds)
	require.NoError(t, err)

	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ActiveSessions))

	got, err := st.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	assert.ElementsMatch(t, []string{a.ID, b.ID}, st.List())

	require.NoError(t, st.Delete(a.ID))
	assert.False(t, a.Running())
	assert.ErrorIs(t, st.Delete(a.ID), ErrNotFound)
	_, err = st.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	st.Close()
	assert.Zero(t, st.Len())
	assert.False(t, b.Running())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ActiveSessions))
}

func TestStoreLimit(t *testing.T) {
	ds, err := ingest.Sample()
	require.NoError(t, err)

	st := NewStore(manualSources(), 1, testOptions())
	defer st.Close()

	_, err = st.Create(ds)
	require.NoError(t, err)
	_, err = st.Create(ds)
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestStoreCreateInvalid(t *testing.T) {
	st := NewStore(manualSources(), 0, testOptions())
	defer st.Close()

	_, err := st.Create(models.NewDataset("empty", "ghost"))
	assert.ErrorIs(t, err, models.ErrMissingRoot)
	assert.Zero(t, st.Len())
}
