package websocket

import (
	"encoding/json"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusiondash/internal/config"
	"fusiondash/internal/shared/testutil"
	"fusiondash/pkg/contracts/events"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(nil, logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func connect(t *testing.T, hub *Hub) (*Client, *mockConnection) {
	t.Helper()
	conn := newMockConnection()
	client := NewClient(hub, conn, "trace-1", DefaultClientConfig(), nil)
	require.True(t, hub.Register(client))
	go client.WritePump()
	go client.ReadPump()
	return client, conn
}

func decode(t *testing.T, data []byte) events.WebSocketMessage {
	t.Helper()
	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_WelcomesClients(t *testing.T) {
	hub := newTestHub(t)
	client, conn := connect(t, hub)

	require.Eventually(t, func() bool { return len(conn.messages()) == 1 }, waitFor, tick)

	msg := decode(t, conn.messages()[0].Data)
	assert.Equal(t, events.MessageTypeConnect, msg.Type)
	assert.Equal(t, "trace-1", msg.TraceID)
	assert.Equal(t, client.ID(), msg.Data.(map[string]interface{})["client_id"])
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := newTestHub(t)
	_, first := connect(t, hub)
	_, second := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, waitFor, tick)

	hub.Broadcast(string(events.MessageTypeDatasetRefreshed), events.DatasetRefreshed{Source: "a.xlsx", RowCount: 3, Columns: 11})

	for _, conn := range []*mockConnection{first, second} {
		require.Eventually(t, func() bool { return len(conn.messages()) == 2 }, waitFor, tick)
		last := conn.messages()[1]
		assert.Equal(t, gws.TextMessage, last.Type)

		msg := decode(t, last.Data)
		assert.Equal(t, events.MessageTypeDatasetRefreshed, msg.Type)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, float64(3), msg.Data.(map[string]interface{})["row_count"])
	}

	assert.Equal(t, int64(2), hub.GetHubMetrics()["messages_sent"])
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, waitFor, tick)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, waitFor, tick)
}

func TestHub_IgnoresHeartbeats(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub)
	require.Eventually(t, func() bool { return len(conn.messages()) == 1 }, waitFor, tick)

	conn.incoming <- mockMessage{Type: gws.TextMessage, Data: []byte(heartbeatMessage)}
	conn.incoming <- mockMessage{Type: gws.TextMessage, Data: []byte(`{"type":"hello"}`)}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Len(t, conn.messages(), 1)
}

func TestHub_StopClosesClients(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(nil, logger)
	hub.Start()
	_, conn := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, waitFor, tick)

	hub.Stop()
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	require.Eventually(t, conn.isClosed, waitFor, tick)
}

func TestHub_BroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, nil)
	for i := 0; i < broadcastQueueSize+5; i++ {
		hub.Broadcast("dataset:refreshed", nil)
	}
	assert.Equal(t, int64(5), hub.GetHubMetrics()["messages_dropped"])
}

func TestHub_RegisterWithoutLoopDoesNotBlock(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	stopped := NewHub(nil, logger)
	stopped.Start()
	stopped.Stop()

	tests := []struct {
		name string
		hub  *Hub
	}{
		{"never started", NewHub(nil, logger)},
		{"stopped", stopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.hub, newMockConnection(), "trace-1", DefaultClientConfig(), nil)

			done := make(chan bool, 1)
			go func() {
				registered := tt.hub.Register(client)
				tt.hub.Unregister(client)
				done <- registered
			}()

			select {
			case registered := <-done:
				assert.False(t, registered)
			case <-time.After(waitFor):
				t.Fatal("Register blocked on a hub that is not running")
			}
			assert.Equal(t, 0, tt.hub.ClientCount())
		})
	}
}

func TestClientConfigFrom(t *testing.T) {
	assert.Equal(t, DefaultClientConfig(), ClientConfigFrom(config.WebSocketConfig{}))

	cc := ClientConfigFrom(config.WebSocketConfig{PongWait: 10 * time.Second, PingPeriod: 20 * time.Second})
	assert.Equal(t, 10*time.Second, cc.PongWait)
	assert.Equal(t, 9*time.Second, cc.PingPeriod)
}
