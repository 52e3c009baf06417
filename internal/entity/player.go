package entity

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

// WinnerName is the display name the commentary uses for the winner of a game.
func (that *Player) WinnerName(winner Mark) string {
	if winner == HumanMark {
		return that.Name
	}
	return ComputerName
}

const ComputerName = "Bestie"
