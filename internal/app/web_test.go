package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_motion/internal/telemetry"
)

func TestMotionAPI(t *testing.T) {
	t.Parallel()
	srv := newMotionServer()
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/motion")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	ev := telemetry.Event{Time: time.Unix(10, 0).UTC(), Direction: "diagonal", Moving: true, EnergyH: 2, EnergyV: 2}
	srv.update(ev)

	resp, err = http.Get(ts.URL + "/api/motion")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got telemetry.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, ev, got)
}

func TestMotionWebsocketStream(t *testing.T) {
	t.Parallel()
	srv := newMotionServer()
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	first := telemetry.Event{Time: time.Unix(1, 0).UTC(), Direction: "none"}
	srv.update(first)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var got telemetry.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, first, got)

	next := telemetry.Event{Time: time.Unix(2, 0).UTC(), Direction: "vertical", Moving: true, EnergyV: 3}
	srv.update(next)
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, next, got)
}
