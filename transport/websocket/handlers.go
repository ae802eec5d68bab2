package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

func (that *Server) handleState(ctx context.Context, sessionID string, _ *Message) (*entity.Game, error) {
	game, err := that.games.GetOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *Server) handlePlay(ctx context.Context, sessionID string, message *Message) (*entity.Game, error) {
	var req playRequest
	if err := decodePayload(message.Payload, &req); err != nil {
		return nil, err
	}

	if req.Cell == nil {
		return nil, fmt.Errorf("%w: cell is required", ErrInvalidPayload)
	}

	game, err := that.games.Play(ctx, sessionID, *req.Cell)
	if err != nil {
		return nil, fmt.Errorf("failed to play: %w", err)
	}

	return game, nil
}

func (that *Server) handleJump(ctx context.Context, sessionID string, message *Message) (*entity.Game, error) {
	var req jumpRequest
	if err := decodePayload(message.Payload, &req); err != nil {
		return nil, err
	}

	if req.Move == nil {
		return nil, fmt.Errorf("%w: move is required", ErrInvalidPayload)
	}

	game, err := that.games.JumpTo(ctx, sessionID, *req.Move)
	if err != nil {
		return nil, fmt.Errorf("failed to jump: %w", err)
	}

	return game, nil
}

func (that *Server) handleRestart(ctx context.Context, sessionID string, _ *Message) (*entity.Game, error) {
	game, err := that.games.Restart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to restart: %w", err)
	}

	return game, nil
}

func (that *Server) sendGame(conn *websocket.Conn, action string, game *entity.Game) error {
	view := tictactoe.Render(game)

	return that.sendMessage(conn, Response{
		Action:  action,
		Payload: ResponsePayload{Game: &view},
	})
}

func (that *Server) sendError(conn *websocket.Conn, action, message string) error {
	return that.sendMessage(conn, Response{
		Action:  action,
		Payload: ResponsePayload{Error: message},
	})
}

func (that *Server) sendMessage(conn *websocket.Conn, response Response) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := conn.WriteJSON(response); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

// clientError keeps storage failures out of what the client sees.
func clientError(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidIndex), errors.Is(err, ErrInvalidPayload):
		return err.Error()
	default:
		return "internal error"
	}
}
