package rest

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-history/internal/config"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/server"
)

//go:embed templates/*.html
var templatesFS embed.FS

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error)
	Play(ctx context.Context, sessionID string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
}

// Server serves the game page, its form actions and the JSON API.
type Server struct {
	logger  *slog.Logger
	games   gameUseCase
	session config.Session
	page    *template.Template
}

func New(logger *slog.Logger, games gameUseCase, session config.Session) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		games:   games,
		session: session,
		page:    template.Must(template.ParseFS(templatesFS, "templates/index.html")),
	}
}

// Handler - routes of the HTTP surface.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", pingHandler)

	mux.HandleFunc("GET /{$}", that.withSession(that.handleIndex))
	mux.HandleFunc("POST /play/{cell}", that.withSession(that.handlePlayForm))
	mux.HandleFunc("POST /jump/{move}", that.withSession(that.handleJumpForm))
	mux.HandleFunc("POST /restart", that.withSession(that.handleRestartForm))

	mux.HandleFunc("GET /api/game", that.withSession(that.handleGetGame))
	mux.HandleFunc("POST /api/play/{cell}", that.withSession(that.handlePlay))
	mux.HandleFunc("POST /api/jump/{move}", that.withSession(that.handleJump))
	mux.HandleFunc("POST /api/restart", that.withSession(that.handleRestart))

	return mux
}

// Start - starts HTTP server and blocks until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	return server.ListenAndServe(ctx, that.logger, server.NewHTTPServer(port, that.Handler()))
}
