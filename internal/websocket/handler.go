package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades connections and runs them as Hub clients. When
// hello is non-nil its message is queued first so a fresh view can render
// without waiting for the next change.
func HandleWebSocket(hub *Hub, hello func() Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // household LAN kiosk, any origin
		})
		if err != nil {
			slog.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn)
		if hello != nil {
			client.Queue(hello())
		}
		client.Run(r.Context())
	}
}
