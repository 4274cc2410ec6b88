package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/logging"
)

func TestServer_PublishImport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(logging.NewNop())
	go s.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(s.HandleImports))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.PublishImport(ctx, ingest.Summary{ImportID: "abc", Season: "2025-2026", TotalCount: 5}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event ImportEvent
	require.NoError(t, sonic.Unmarshal(msg, &event))
	assert.Equal(t, "import.completed", event.Type)
	assert.Equal(t, "abc", event.Import.ImportID)
	assert.Equal(t, 5, event.Import.TotalCount)

	conn.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_PublishImportWithoutClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(nil)
	go s.Run(ctx)

	assert.NoError(t, s.PublishImport(ctx, ingest.Summary{ImportID: "x"}))
}

func TestHub_BroadcastAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(logging.NewNop())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	err := h.Broadcast(context.Background(), []byte("late"))
	assert.ErrorIs(t, err, ErrHubStopped)
}

func TestHub_BroadcastHonoursContext(t *testing.T) {
	h := NewHub(logging.NewNop())
	for range cap(h.broadcast) {
		require.NoError(t, h.Broadcast(context.Background(), []byte("queued")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Broadcast(ctx, []byte("blocked")), context.Canceled)
}
