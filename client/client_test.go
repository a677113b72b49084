package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

// newWSServer accepts websocket upgrades and holds each connection open
// until the peer closes it, tracking how many are live.
func newWSServer(t *testing.T, active *int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt64(active, 1)
		defer atomic.AddInt64(active, -1)
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnect_RedialClosesPreviousConnection(t *testing.T) {
	var active int64
	srv := newWSServer(t, &active)

	c := New(Config{BaseURL: srv.URL, Token: "tok"})
	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&active) == 1
	}, time.Second, 10*time.Millisecond)

	// Redialing cancels the previous read loop context, which closes the
	// first connection rather than leaking its goroutine and socket.
	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&active) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The retired read loop must not clear the replacement connection.
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	require.NotNil(t, conn)

	require.NoError(t, c.Close())
}
