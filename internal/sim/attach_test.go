package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

func equatorialStore(t *testing.T, lons ...float64) *kb.KnowledgeBase {
	t.Helper()
	store := kb.NewKnowledgeBase()
	for i, lon := range lons {
		n := &model.Node{
			ID:       model.NodeID(i),
			Position: model.Geodetic{LongitudeDeg: lon, AltitudeKm: 550},
		}
		require.NoError(t, store.AddNode(n))
	}
	return store
}

func TestAttachTerminalsNearestInRange(t *testing.T) {
	store := equatorialStore(t, 0, 30)
	users := []model.UserTerminal{
		{ID: 0, Position: model.Geodetic{LongitudeDeg: 1}},
		{ID: 1, Position: model.Geodetic{LongitudeDeg: 28}},
		{ID: 2, Position: model.Geodetic{LatitudeDeg: 60, LongitudeDeg: 100}},
	}

	res, err := AttachTerminals(store, users, core.UserTerminalTransceiver, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Connected)
	assert.Equal(t, 1, res.Unconnected)

	require.NotNil(t, users[0].ConnectedNode)
	assert.Equal(t, model.NodeID(0), *users[0].ConnectedNode)
	require.NotNil(t, users[1].ConnectedNode)
	assert.Equal(t, model.NodeID(1), *users[1].ConnectedNode)
	assert.Nil(t, users[2].ConnectedNode)
	assert.Zero(t, users[2].LatencyMs)

	// Latency is the one-way light time with 5-15% overhead.
	d := core.SurfaceDistanceKm(users[0].Position, model.Geodetic{})
	base := d / speedOfLightKmS * 1000
	assert.GreaterOrEqual(t, users[0].LatencyMs, base*latencyOverheadLo)
	assert.Less(t, users[0].LatencyMs, base*latencyOverheadHi)
	assert.InDelta(t, (users[0].LatencyMs+users[1].LatencyMs)/2, res.AvgLatencyMs, 1e-9)

	n0, _ := store.GetNode(0)
	n1, _ := store.GetNode(1)
	assert.Equal(t, 1, n0.ActiveConnections)
	assert.Equal(t, 1, n1.ActiveConnections)
}

func TestAttachTerminalsUnlimitedRange(t *testing.T) {
	store := equatorialStore(t, 0)
	users := []model.UserTerminal{{ID: 0, Position: model.Geodetic{LatitudeDeg: -60, LongitudeDeg: 170}}}

	res, err := AttachTerminals(store, users, core.TransceiverModel{}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Connected)
	require.NotNil(t, users[0].ConnectedNode)
}

func TestAttachTerminalsEmpty(t *testing.T) {
	store := kb.NewKnowledgeBase()
	users := []model.UserTerminal{{ID: 0}}

	res, err := AttachTerminals(store, users, core.UserTerminalTransceiver, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, AttachResult{Unconnected: 1}, res)

	_, err = AttachTerminals(nil, users, core.UserTerminalTransceiver, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}
