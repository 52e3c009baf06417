package entity

// Score is the session tally of finished games.
type Score struct {
	Human    int64 `json:"human"`
	Computer int64 `json:"computer"`
	Draws    int64 `json:"draws"`
}

// ScoreField names the tally bucket a finished game falls into.
func ScoreField(winner Mark) string {
	switch winner {
	case HumanMark:
		return "human"
	case ComputerMark:
		return "computer"
	default:
		return "draws"
	}
}
