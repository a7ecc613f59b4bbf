// ABOUTME: Tests for the websocket hub over an httptest server
// ABOUTME: Covers hello state, update fan-out, the REST state endpoint, origin checks, and close

package broadcast

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/mauromedda/intentd/internal/clock"
	"github.com/mauromedda/intentd/internal/intent"
)

func newTestHub(t *testing.T, origins []string) (*Hub, *httptest.Server) {
	t.Helper()
	e := intent.NewEngine(intent.Config{Clock: clock.NewManual(time.Unix(0, 0))})
	hub := NewHub(e, origins)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, err := websocket.Dial(url, "", origin)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func receive(t *testing.T, ws *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var raw string
	require.NoError(t, websocket.Message.Receive(ws, &raw))
	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	return msg
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n },
		5*time.Second, 10*time.Millisecond, "want %d clients", n)
}

func TestHub_HelloThenUpdates(t *testing.T) {
	hub, srv := newTestHub(t, nil)
	ws := dial(t, srv, "http://localhost/")

	hello := receive(t, ws)
	assert.JSONEq(t, `"hello"`, string(hello["event"]))
	var id string
	require.NoError(t, json.Unmarshal(hello["clientId"], &id))
	assert.Len(t, id, 36)
	assert.JSONEq(t,
		`{"current":{"key":"exploring","label":"Exploring","emoji":"🔍","color":"#6e7bf2"},"previous":null}`,
		string(hello["state"]))

	waitClients(t, hub, 1)
	hub.Publish(intent.Transition{
		From: intent.Exploring,
		To:   intent.Building,
		Rule: intent.RuleGrowth,
		At:   time.Date(2024, 5, 1, 9, 0, 3, 0, time.UTC),
	})

	update := receive(t, ws)
	assert.JSONEq(t, `"intent-update"`, string(update["event"]))
	assert.JSONEq(t, `"growth"`, string(update["rule"]))
	assert.Contains(t, string(update["intent"]), `"key":"building"`)
}

func TestHub_HelloPrecedesConcurrentUpdates(t *testing.T) {
	hub, srv := newTestHub(t, nil)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		tr := intent.Transition{From: intent.Exploring, To: intent.Building, Rule: intent.RuleGrowth}
		for {
			select {
			case <-stop:
				return
			default:
				hub.Publish(tr)
			}
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()

	for range 5 {
		ws := dial(t, srv, "http://localhost/")
		first := receive(t, ws)
		require.JSONEq(t, `"hello"`, string(first["event"]))
		require.NoError(t, ws.Close())
	}
}

func TestHub_FanOut(t *testing.T) {
	hub, srv := newTestHub(t, nil)
	a := dial(t, srv, "http://localhost/")
	b := dial(t, srv, "http://localhost/")
	receive(t, a)
	receive(t, b)
	waitClients(t, hub, 2)

	hub.Publish(intent.Transition{From: intent.Building, To: intent.Confused, Rule: intent.RuleUndoBurst})

	for _, ws := range []*websocket.Conn{a, b} {
		msg := receive(t, ws)
		assert.Contains(t, string(msg["intent"]), `"key":"confused"`)
	}
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub, srv := newTestHub(t, nil)
	ws := dial(t, srv, "http://localhost/")
	receive(t, ws)
	waitClients(t, hub, 1)

	require.NoError(t, ws.Close())
	waitClients(t, hub, 0)
}

func TestHub_StateEndpoint(t *testing.T) {
	_, srv := newTestHub(t, nil)

	resp, err := http.Get(srv.URL + "/intent")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), `"current":{"key":"exploring"`)
}

func TestHub_Healthz(t *testing.T) {
	_, srv := newTestHub(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHub_OriginAllowList(t *testing.T) {
	_, srv := newTestHub(t, []string{"http://localhost:5173"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, err := websocket.Dial(url, "", "http://evil.example")
	assert.Error(t, err, "unlisted origin should be rejected")

	ws := dial(t, srv, "http://localhost:5173")
	hello := receive(t, ws)
	assert.JSONEq(t, `"hello"`, string(hello["event"]))
}

func TestHub_CloseRefusesClients(t *testing.T) {
	hub, srv := newTestHub(t, nil)
	ws := dial(t, srv, "http://localhost/")
	receive(t, ws)
	waitClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	late := dial(t, srv, "http://localhost/")
	require.NoError(t, late.SetReadDeadline(time.Now().Add(5*time.Second)))
	var raw string
	assert.Error(t, websocket.Message.Receive(late, &raw), "closed hub should hang up")
}
