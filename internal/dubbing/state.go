package dubbing

// State is the orchestrator's position in the dubbing lifecycle. Transitions
// are strictly forward; ready, skipped, and failed are terminal.
type State string

const (
	StateIdle         State = "idle"
	StateTranscribing State = "transcribing"
	StateTranslating  State = "translating"
	StateSynthesizing State = "synthesizing"
	StateReady        State = "ready"
	StateSkipped      State = "skipped"
	StateFailed       State = "failed"
)

var stateRank = map[State]int{
	StateIdle:         0,
	StateTranscribing: 1,
	StateTranslating:  2,
	StateSynthesizing: 3,
	StateReady:        4,
	StateSkipped:      4,
	StateFailed:       4,
}

// Terminal reports whether the state ends the lifecycle.
func (s State) Terminal() bool {
	return s == StateReady || s == StateSkipped || s == StateFailed
}

// canTransition reports whether moving from s to next respects forward-only
// ordering.
func (s State) canTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	from, ok := stateRank[s]
	if !ok {
		return false
	}
	to, ok := stateRank[next]
	if !ok {
		return false
	}
	return to > from
}
