package websocket

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are left to the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ImportEvent is the message pushed to clients after each import.
type ImportEvent struct {
	Type   string         `json:"type"`
	Import ingest.Summary `json:"import"`
}

// Server pushes import summaries to websocket clients.
type Server struct {
	hub    *Hub
	logger *logging.Logger
}

var _ ingest.Notifier = (*Server)(nil)

// NewServer creates a new WebSocket server
func NewServer(logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{hub: NewHub(logger), logger: logger.Component("websocket")}
}

// Run drives the hub until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// HandleImports upgrades the request and subscribes it to import events.
func (s *Server) HandleImports(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// PublishImport broadcasts summary to every connected client.
func (s *Server) PublishImport(ctx context.Context, summary ingest.Summary) error {
	data, err := sonic.Marshal(ImportEvent{Type: "import.completed", Import: summary})
	if err != nil {
		return errors.Wrap(err, "encode import event")
	}
	return s.hub.Broadcast(ctx, data)
}
