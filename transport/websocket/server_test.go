package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-history/internal/config"
	"github.com/rocketscienceinc/tictactoe-history/internal/repository"
	"github.com/rocketscienceinc/tictactoe-history/internal/usecase"
)

var testSession = config.Session{
	Store:      config.StoreMemory,
	TTL:        time.Hour,
	CookieName: "user_session",
}

func newTestServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(New(logger, manager, testSession).Handler(ctx))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, header http.Header) (*websocket.Conn, *http.Response) {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, resp
}

func send(t *testing.T, conn *websocket.Conn, raw string) Response {
	t.Helper()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))

	var resp Response
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&resp))

	return resp
}

func TestServer_Actions(t *testing.T) {
	t.Run("Play and jump", func(t *testing.T) {
		// Given: a connected client
		conn, resp := dial(t, newTestServer(t), nil)
		assert.Contains(t, resp.Header.Get("Set-Cookie"), "user_session=")

		// When: X plays 0 and O plays 4
		send(t, conn, `{"action":"game:play","payload":{"cell":0}}`)
		got := send(t, conn, `{"action":"game:play","payload":{"cell":4}}`)

		// Then: the view reflects both moves
		require.Empty(t, got.Payload.Error)
		require.NotNil(t, got.Payload.Game)
		assert.Equal(t, actionPlay, got.Action)
		assert.Equal(t, "Next player: X", got.Payload.Game.Status)
		assert.Len(t, got.Payload.Game.Moves, 3)

		// When: jumping back to move 1
		got = send(t, conn, `{"action":"game:jump","payload":{"move":1}}`)

		// Then: O is to move and history is kept
		require.NotNil(t, got.Payload.Game)
		assert.Equal(t, "Next player: O", got.Payload.Game.Status)
		assert.Len(t, got.Payload.Game.Moves, 3)
	})

	t.Run("Session survives reconnects", func(t *testing.T) {
		// Given: a client that played a move
		url := newTestServer(t)
		conn, resp := dial(t, url, nil)
		send(t, conn, `{"action":"game:play","payload":{"cell":8}}`)

		header := http.Header{}
		for _, cookie := range resp.Cookies() {
			header.Add("Cookie", (&http.Cookie{Name: cookie.Name, Value: cookie.Value}).String())
		}

		// When: reconnecting with the session cookie
		again, _ := dial(t, url, header)
		got := send(t, again, `{"action":"game:state"}`)

		// Then: the move is still there
		require.NotNil(t, got.Payload.Game)
		assert.Equal(t, "X", got.Payload.Game.Cells[8])
	})

	t.Run("Restart", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t), nil)
		send(t, conn, `{"action":"game:play","payload":{"cell":8}}`)

		got := send(t, conn, `{"action":"game:restart"}`)

		require.NotNil(t, got.Payload.Game)
		assert.Equal(t, 0, got.Payload.Game.CurrentMove)
		assert.Empty(t, got.Payload.Game.Cells[8])
	})
}

func TestServer_Errors(t *testing.T) {
	tests := map[string]struct {
		message string
		err     string
	}{
		"unknown action":    {`{"action":"game:undo"}`, "unknown action"},
		"malformed json":    {`{"action":`, "malformed message"},
		"missing cell":      {`{"action":"game:play","payload":{}}`, "cell is required"},
		"fractional cell":   {`{"action":"game:play","payload":{"cell":1.5}}`, "invalid payload"},
		"unexpected key":    {`{"action":"game:play","payload":{"cell":1,"mark":"O"}}`, "invalid payload"},
		"jump out of range": {`{"action":"game:jump","payload":{"move":4}}`, "out of range"},
		"missing move":      {`{"action":"game:jump"}`, "move is required"},
	}

	url := newTestServer(t)

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// Given: a connected client
			conn, _ := dial(t, url, nil)

			// When: sending a bad message
			got := send(t, conn, tc.message)

			// Then: an error comes back and the connection stays usable
			assert.Contains(t, got.Payload.Error, tc.err)
			assert.Nil(t, got.Payload.Game)

			state := send(t, conn, `{"action":"game:state"}`)
			assert.NotNil(t, state.Payload.Game)
		})
	}
}

func TestSameHostname(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com:9091/ws", nil)

	assert.True(t, sameHostname(req))

	req.Header.Set("Origin", "http://example.com:9090")
	assert.True(t, sameHostname(req))

	req.Header.Set("Origin", "http://evil.test")
	assert.False(t, sameHostname(req))
}
