// ABOUTME: Websocket hub pushing intent-update messages to realtime-layer clients
// ABOUTME: chi routes /ws, /intent, /healthz; CORS and origin checks for browser participants

package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/mauromedda/intentd/internal/intent"
	pilog "github.com/mauromedda/intentd/internal/log"
	"github.com/mauromedda/intentd/internal/telemetry"
)

const writeTimeout = 2 * time.Second

// EventHello is the first message a client receives after connecting.
const EventHello = "hello"

// ErrOriginNotAllowed rejects a websocket handshake from an unlisted origin.
var ErrOriginNotAllowed = errors.New("origin not allowed")

var errHubClosed = errors.New("hub closed")

// Hub fans intent transitions out to connected websocket clients.
type Hub struct {
	engine  *intent.Engine
	origins []string // empty allows any origin

	mu      sync.Mutex
	clients map[string]*websocket.Conn
	closed  bool
}

// NewHub creates a hub reporting state from engine. An empty origins list
// accepts every origin.
func NewHub(engine *intent.Engine, origins []string) *Hub {
	return &Hub{
		engine:  engine,
		origins: origins,
		clients: make(map[string]*websocket.Conn),
	}
}

type helloMsg struct {
	Event    string          `json:"event"`
	ClientID string          `json:"clientId"`
	State    telemetry.State `json:"state"`
}

// Handler returns the HTTP surface of the hub.
func (h *Hub) Handler() http.Handler {
	allowed := h.origins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	r.Get("/intent", h.serveState)
	r.Handle("/ws", websocket.Server{
		Handshake: h.checkOrigin,
		Handler:   h.serveConn,
	})
	return r
}

func (h *Hub) serveState(w http.ResponseWriter, _ *http.Request) {
	data, err := telemetry.StateOf(h.engine).MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *Hub) checkOrigin(_ *websocket.Config, req *http.Request) error {
	if len(h.origins) == 0 {
		return nil
	}
	if origin := req.Header.Get("Origin"); slices.Contains(h.origins, origin) {
		return nil
	}
	return ErrOriginNotAllowed
}

func (h *Hub) serveConn(ws *websocket.Conn) {
	id := uuid.NewString()
	if err := h.add(id, ws); err != nil {
		pilog.Debug("hub: client %s refused: %v", id, err)
		ws.Close()
		return
	}
	defer h.remove(id)
	pilog.Debug("hub: client %s connected", id)

	// Inbound messages are ignored; the read loop only detects disconnects.
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			pilog.Debug("hub: client %s gone: %v", id, err)
			return
		}
	}
}

// Publish sends the update for tr to every client. Clients that cannot keep
// up within the write timeout are dropped. It is an event bus handler.
func (h *Hub) Publish(tr intent.Transition) {
	data, err := telemetry.UpdateOf(tr).MarshalJSON()
	if err != nil {
		pilog.Warn("hub: marshaling update: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ws := range h.clients {
		if err := h.send(ws, data); err != nil {
			pilog.Warn("hub: dropping client %s: %v", id, err)
			ws.Close()
			delete(h.clients, id)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ws := range h.clients {
		ws.Close()
		delete(h.clients, id)
	}
}

// add sends the hello frame and registers the client under one lock, so no
// update can reach the client before its hello.
func (h *Hub) add(id string, ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errHubClosed
	}
	hello, err := json.Marshal(helloMsg{Event: EventHello, ClientID: id, State: telemetry.StateOf(h.engine)})
	if err != nil {
		return fmt.Errorf("marshaling hello: %w", err)
	}
	if err := h.send(ws, hello); err != nil {
		return fmt.Errorf("sending hello: %w", err)
	}
	h.clients[id] = ws
	return nil
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ws, ok := h.clients[id]; ok {
		ws.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) send(ws *websocket.Conn, data []byte) error {
	if err := ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return websocket.Message.Send(ws, string(data))
}
