package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_motion/internal/lifecycle"
	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

func TestEventPublisherCountsDropsWhileDisconnected(t *testing.T) {
	t.Parallel()
	conn := lifecycle.NewConnectionFSM()
	require.NoError(t, conn.BootupComplete())
	require.NoError(t, conn.PeripheralsComplete())

	// no client: anything reaching publishEvent would panic
	pub := &eventPublisher{topic: "motion", conn: conn}
	pub.emit(telemetry.Event{Direction: "none"}, false)
	pub.emit(telemetry.Event{Direction: "vertical", Moving: true, EnergyV: 2}, true)
	pub.emit(telemetry.Event{Direction: "vertical", Moving: true, EnergyV: 2}, false)

	assert.Equal(t, lifecycle.ConnConnecting, conn.Status())
	assert.Equal(t, 3, pub.dropped)
}
