package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	actionConnect    = "connect"
	actionRename     = "player:rename"
	actionNewGame    = "game:new"
	actionResetGame  = "game:reset"
	actionGameTurn   = "game:turn"
	actionGetScore   = "score:get"
	actionCommentary = "game:commentary"
	actionVoice      = "game:voice"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Score  *entity.Score  `json:"score,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
	Name   string         `json:"name,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type CommentaryPayload struct {
	Text string `json:"text"`
}
