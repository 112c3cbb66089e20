package pipeline

// State is one orchestrator state. A run moves strictly forward through the
// table below; there are no orchestrator-level retries, so no transition
// points backward.
type State string

// Orchestrator states. Done and Failed are terminal for a generation pass;
// Refining re-enters from Done when feedback arrives.
const (
	StateCollecting   State = "collecting"
	StateAggregating  State = "aggregating"
	StateSynthesizing State = "synthesizing"
	StateRefining     State = "refining"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// transitions is the full state machine. Every state change the orchestrator
// makes is checked against this table.
var transitions = map[State][]State{
	StateCollecting:   {StateAggregating},
	StateAggregating:  {StateSynthesizing},
	StateSynthesizing: {StateDone, StateFailed},
	StateRefining:     {StateDone, StateFailed},
	StateDone:         {StateRefining},
	StateFailed:       {},
}

// CanTransition reports whether the machine allows moving from one state to
// the next.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a state ends a pass. Done still accepts feedback,
// and RefineRun makes one documented exception for Failed runs that hold a
// prior document version.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
