package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleIndex")

	game, err := that.games.GetOrCreateGame(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		log.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = that.page.Execute(w, tictactoe.Render(game)); err != nil {
		log.Error("failed to render page", "error", err)
	}
}

func (that *Server) handlePlayForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := that.play(w, r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (that *Server) handleJumpForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := that.jump(w, r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (that *Server) handleRestartForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := that.restart(w, r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetOrCreateGame(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		that.logger.Error("failed to get game", "method", "handleGetGame", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get game"})
		return
	}

	that.writeJSON(w, http.StatusOK, tictactoe.Render(game))
}

func (that *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if game, ok := that.play(w, r); ok {
		that.writeJSON(w, http.StatusOK, tictactoe.Render(game))
	}
}

func (that *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	if game, ok := that.jump(w, r); ok {
		that.writeJSON(w, http.StatusOK, tictactoe.Render(game))
	}
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if game, ok := that.restart(w, r); ok {
		that.writeJSON(w, http.StatusOK, tictactoe.Render(game))
	}
}

// play, jump and restart write the error response themselves and report
// whether the caller should go on.
func (that *Server) play(w http.ResponseWriter, r *http.Request) (*entity.Game, bool) {
	log := that.logger.With("method", "play")

	cell, err := pathInt(r, "cell")
	if err != nil {
		that.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %w", apperror.ErrInvalidCell, err))
		return nil, false
	}

	game, err := that.games.Play(r.Context(), sessionFromContext(r.Context()), cell)
	if err != nil {
		log.Error("failed to play", "error", err)
		that.writeError(w, r, http.StatusInternalServerError, errors.New("failed to play"))
		return nil, false
	}

	return game, true
}

func (that *Server) jump(w http.ResponseWriter, r *http.Request) (*entity.Game, bool) {
	log := that.logger.With("method", "jump")

	move, err := pathInt(r, "move")
	if err != nil {
		that.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %w", apperror.ErrInvalidIndex, err))
		return nil, false
	}

	game, err := that.games.JumpTo(r.Context(), sessionFromContext(r.Context()), move)
	if errors.Is(err, apperror.ErrInvalidIndex) {
		that.writeError(w, r, http.StatusBadRequest, err)
		return nil, false
	}

	if err != nil {
		log.Error("failed to jump", "error", err)
		that.writeError(w, r, http.StatusInternalServerError, errors.New("failed to jump"))
		return nil, false
	}

	return game, true
}

func (that *Server) restart(w http.ResponseWriter, r *http.Request) (*entity.Game, bool) {
	game, err := that.games.Restart(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		that.logger.Error("failed to restart", "method", "restart", "error", err)
		that.writeError(w, r, http.StatusInternalServerError, errors.New("failed to restart"))
		return nil, false
	}

	return game, true
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}

	return value, nil
}

// writeError answers API routes with JSON and form routes with plain text.
func (that *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if isAPI(r) {
		that.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	http.Error(w, err.Error(), status)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
