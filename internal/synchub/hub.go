package synchub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans sync-run progress events out to connected websocket clients.
// It satisfies the ingest package's Notifier interface, so the pipeline
// never learns about websockets.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) SyncStarted(source string) {
	h.Broadcast(Event{Type: EventSyncStarted, Source: source, At: time.Now().UTC()})
}

func (h *Hub) ReleaseIngested(title string) {
	h.Broadcast(Event{Type: EventReleaseIngested, Title: title, At: time.Now().UTC()})
}

func (h *Hub) SyncFinished(source string, count int) {
	h.Broadcast(Event{Type: EventSyncFinished, Source: source, Count: count, At: time.Now().UTC()})
}
