package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-history/internal/config"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-history/internal/server"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error)
	Play(ctx context.Context, sessionID string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, sessionID string, message *Message) (*entity.Game, error)

// Server pushes the game view to the client after every action it sends.
type Server struct {
	logger   *slog.Logger
	games    gameUseCase
	session  config.Session
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameUseCase, session config.Session) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		games:   games,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHostname,
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionPlay] = server.handlePlay
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionRestart] = server.handleRestart

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	return server.ListenAndServe(ctx, that.logger, server.NewHTTPServer(port, that.Handler(ctx)))
}

// upgradeToWebSocket - upgrades the connection and serves it until the client leaves.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	header := http.Header{}
	sessionID, ok := pkg.SessionID(req, that.session.CookieName)
	if !ok {
		sessionID = pkg.GenerateNewSessionID()
		header.Add("Set-Cookie", pkg.NewSessionCookie(that.session.CookieName, sessionID, that.session.TTL).String())
		log.Info("session cookie not found, new one created", "session", sessionID)
	}

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log = log.With("session", sessionID)
	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn, sessionID); err != nil {
		log.Error("error handling messages", "error", err)
		return
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it disconnects or ctx ends.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	log := that.logger.With("method", "handleMessages", "session", sessionID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go that.keepAlive(ctx, conn)

	for {
		message, err := readMessage(conn)
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		}

		if errors.Is(err, ErrMalformedMessage) {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendError(conn, "", ErrMalformedMessage.Error()); err != nil {
				return err
			}
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		if err = that.processMessage(ctx, conn, sessionID, message); err != nil {
			return err
		}
	}
}

func (that *Server) processMessage(ctx context.Context, conn *websocket.Conn, sessionID string, message *Message) error {
	log := that.logger.With("method", "processMessage", "session", sessionID, "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action")
		return that.sendError(conn, message.Action, ErrUnknownAction.Error())
	}

	game, err := handler(ctx, sessionID, message)
	if err != nil {
		log.Warn("error processing message", "error", err)
		return that.sendError(conn, message.Action, clientError(err))
	}

	return that.sendGame(conn, message.Action, game)
}

// keepAlive pings the client so dead connections hit the read deadline.
func (that *Server) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readMessage decodes numbers as json.Number so fractional cells are refused, not truncated.
func readMessage(conn *websocket.Conn) (*Message, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var message Message
	if err = decoder.Decode(&message); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	return &message, nil
}

// sameHostname accepts pages served from the same host on another port.
func sameHostname(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host, _, err := net.SplitHostPort(req.Host)
	if err != nil {
		host = req.Host
	}

	return originURL.Hostname() == host
}
