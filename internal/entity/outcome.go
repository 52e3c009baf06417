package entity

type OutcomeStatus string

const (
	OutcomeInProgress OutcomeStatus = "in_progress"
	OutcomeWin        OutcomeStatus = "win"
	OutcomeDraw       OutcomeStatus = "draw"
)

// Outcome classifies a board. Winner and Line are set only for OutcomeWin.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
	Line   *Line         `json:"line,omitempty"`
}

func InProgress() Outcome {
	return Outcome{Status: OutcomeInProgress}
}

func Draw() Outcome {
	return Outcome{Status: OutcomeDraw}
}

func Win(mark Mark, line Line) Outcome {
	return Outcome{Status: OutcomeWin, Winner: mark, Line: &line}
}

func (that Outcome) IsTerminal() bool {
	return that.Status != OutcomeInProgress
}
