package signalserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/klmtseng/BEAM-P2P/internal/signaling"
)

// Configure the websocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// In production you'd check r.Header.Get("Origin") against the
	// webapp's domain.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWs returns an http.HandlerFunc that handles websocket requests.
// It takes the hub as a dependency.
func ServeWs(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade connection", "error", err)
			return
		}

		client := &Client{
			Hub:       hub,
			Conn:      conn,
			Requested: r.URL.Query().Get("identity"),
			Send:      make(chan *signaling.Message, 256),
		}

		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// NewServeMux builds the signal server's HTTP routes around the hub.
func NewServeMux(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Signal server is healthy."))
	})

	mux.HandleFunc("/ws", ServeWs(hub))

	return mux
}
