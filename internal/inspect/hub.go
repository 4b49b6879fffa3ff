package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// EventType is the kind of a watch event.
type EventType string

const (
	EventFlush     EventType = "flush"
	EventRecompute EventType = "recompute"
	EventDispose   EventType = "dispose"
	EventCascade   EventType = "cascade"
)

// Event is sent to watch clients as a JSON text message.
type Event struct {
	Type       EventType `json:"type"`
	Time       time.Time `json:"time"`
	Store      string    `json:"store,omitempty"`
	Selector   string    `json:"selector,omitempty"`
	Changed    bool      `json:"changed,omitempty"`
	ElapsedUS  int64     `json:"elapsed_us,omitempty"`
	Recomputed int       `json:"recomputed,omitempty"`
	Runs       int       `json:"runs,omitempty"`
}

// eventBuffer bounds the queue between tracker goroutines and the writer.
const eventBuffer = 256

// Hub broadcasts tracker events to websocket clients.
//
// Hook methods only enqueue; a single writer goroutine serializes writes to
// every connection. Events are dropped when the queue is full.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHub creates a hub and starts its writer. Call Close to stop it.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // inspector is a local dev tool
			},
		},
		logger: logger,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.pump()
	return h
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("watch upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.logger.Debug("watch client connected", "remote", req.RemoteAddr)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
}

// Publish queues ev for every connected client.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case <-h.done:
	case h.events <- ev:
	default:
		h.logger.Debug("watch event dropped", "type", ev.Type)
	}
}

func (h *Hub) pump() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case ev := <-h.events:
			h.broadcast(ev)
		}
	}
}

// broadcast sends a message to all connected clients.
func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(client)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the writer and closes all client connections.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		defer h.mu.Unlock()
		for client := range h.clients {
			client.Close()
			delete(h.clients, client)
		}
	})
}

// FlushStarted implements reactive.Hooks.
func (h *Hub) FlushStarted(scope string) func(int) {
	return func(recomputed int) {
		h.Publish(Event{Type: EventFlush, Store: scope, Recomputed: recomputed})
	}
}

// Recomputed implements reactive.Hooks.
func (h *Hub) Recomputed(selector string, elapsed time.Duration, changed bool) {
	h.Publish(Event{
		Type:      EventRecompute,
		Selector:  selector,
		Changed:   changed,
		ElapsedUS: elapsed.Microseconds(),
	})
}

// Disposed implements reactive.Hooks.
func (h *Hub) Disposed(selector string) {
	h.Publish(Event{Type: EventDispose, Selector: selector})
}

// CascadeExceeded implements reactive.Hooks.
func (h *Hub) CascadeExceeded(selector string, runs int) {
	h.Publish(Event{Type: EventCascade, Selector: selector, Runs: runs})
}

var _ reactive.Hooks = (*Hub)(nil)
