package websocket

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

const (
	actionState   = "game:state"
	actionPlay    = "game:play"
	actionJump    = "game:jump"
	actionRestart = "game:restart"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrMalformedMessage = errors.New("malformed message")
)

// Message is what the client sends: an action and its loosely typed arguments.
type Message struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Response struct {
	Action  string          `json:"action"`
	Payload ResponsePayload `json:"payload"`
}

type ResponsePayload struct {
	Game  *tictactoe.View `json:"game,omitempty"`
	Error string          `json:"error,omitempty"`
}

type playRequest struct {
	Cell *int `mapstructure:"cell"`
}

type jumpRequest struct {
	Move *int `mapstructure:"move"`
}

// decodePayload fills out from the message arguments, refusing unknown keys.
func decodePayload(payload map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err = decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return nil
}
