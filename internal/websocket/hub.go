// Package websocket fans committed bank changes out to open views. A
// message only says what changed and the resulting balance; views re-read
// whatever else they show.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/metrics"
)

type Message struct {
	Type    string `json:"type"`
	Entity  string `json:"entity"`
	Action  string `json:"action"`
	ID      string `json:"id,omitempty"`
	Balance int    `json:"balance"`
}

// NewMessage builds a message whose Type is "<entity>_<action>", e.g.
// transaction_created or ledger_cleared.
func NewMessage(entity, action, id string, balance int) Message {
	return Message{
		Type:    entity + "_" + action,
		Entity:  entity,
		Action:  action,
		ID:      id,
		Balance: balance,
	}
}

func eventMessage(e bank.Event) Message {
	return NewMessage(e.Entity, e.Action, e.ID, e.Balance)
}

// Hub is the bank's Notifier for connected views. A view whose buffer is
// full has missed a change, so it is evicted rather than left stale; on
// reconnect it gets a fresh snapshot.
type Hub struct {
	mu     sync.Mutex
	views  map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{views: make(map[*Client]struct{}), logger: logger}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views[c] = struct{}{}
	metrics.WebSocketClients.Set(float64(len(h.views)))
}

// Unregister drops c and closes its queue. Calling it for an evicted or
// unknown client is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop requires h.mu.
func (h *Hub) drop(c *Client) bool {
	if _, ok := h.views[c]; !ok {
		return false
	}
	delete(h.views, c)
	close(c.send)
	metrics.WebSocketClients.Set(float64(len(h.views)))
	return true
}

// Notify implements bank.Notifier. It never blocks the bank.
func (h *Hub) Notify(e bank.Event) {
	h.Broadcast(eventMessage(e))
}

func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.views {
		select {
		case c.send <- data:
		default:
			h.drop(c)
			metrics.WebSocketEvictions.Inc()
			h.logger.Warn("evicted slow view", "type", msg.Type, "views", len(h.views))
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.views)
}
