package entity

// GameEvent names a moment of the game the voice narration reacts to.
type GameEvent string

const (
	EventMove        GameEvent = "move"
	EventHumanWin    GameEvent = "win"
	EventComputerWin GameEvent = "loss"
	EventDraw        GameEvent = "draw"
)

// FinishEvent maps the winner of a finished game to its event.
func FinishEvent(winner Mark) GameEvent {
	switch winner {
	case HumanMark:
		return EventHumanWin
	case ComputerMark:
		return EventComputerWin
	default:
		return EventDraw
	}
}

// Speech is synthesized audio for a game event.
type Speech struct {
	Event    GameEvent `json:"event"`
	MimeType string    `json:"mime_type"`
	Audio    []byte    `json:"audio"`
}
