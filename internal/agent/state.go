// internal/agent/state.go
package agent

import "time"

// State is a step of the orchestration loop.
type State string

const (
	StateParse        State = "PARSE"
	StatePlan         State = "PLAN"
	StateAwaitAnswers State = "AWAIT_ANSWERS"
	StateFinal        State = "FINAL"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// transitions lists the legal successors of each state. FAILED is
// reachable from every non-terminal state.
var transitions = map[State][]State{
	StateParse:        {StatePlan, StateFailed},
	StatePlan:         {StateAwaitAnswers, StateFinal, StateFailed},
	StateAwaitAnswers: {StateFinal, StateFailed},
	StateFinal:        {StateDone, StateFailed},
}

func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Transition is one entry of a run's history.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}
