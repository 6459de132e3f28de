package events

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

	"github.com/sangkips/receipt-print-api/pkg/printer"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r, "till-1")
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_Publish(t *testing.T) {
	h := NewHub(nil, nil)
	conn := dial(t, h)

	h.Publish(printer.Attempt{
		JobID:     "job-9",
		Succeeded: printer.MethodDialog,
		Records:   []printer.AttemptRecord{{Transport: printer.MethodDialog, Outcome: printer.OutcomeSucceeded}},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type MessageType     `json:"type"`
		Data printer.Attempt `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, TypePrintAttempt, msg.Type)
	assert.Equal(t, "job-9", msg.Data.JobID)
	assert.Equal(t, printer.MethodDialog, msg.Data.Succeeded)
}

func TestHub_Disconnect(t *testing.T) {
	h := NewHub(nil, nil)
	conn := dial(t, h)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CheckOrigin(t *testing.T) {
	h := NewHub(nil, []string{"http://pos.local"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://pos.local")
	assert.True(t, h.upgrader.CheckOrigin(r))

	r.Header.Set("Origin", "http://evil.example")
	assert.False(t, h.upgrader.CheckOrigin(r))
}
