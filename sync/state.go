// Package sync implements the per-remote sync engine (C8, spec.md §4.8):
// a small state machine with write-behind debounce and single-flight
// coalescing over one core.RemoteTokenStorageProvider.
package sync

// State is one node of the sync engine's state machine (spec.md §4.8).
type State string

const (
	StateDisconnected State = "disconnected"
	StateIdle         State = "idle"
	StateReady        State = "ready"
	StateMerging      State = "merging"
	StateError        State = "error"
)

// transitions encodes the legal edges of the state machine. "shutdown" is
// legal from any state and is checked separately.
var transitions = map[State]map[string]State{
	StateDisconnected: {"connect": StateIdle},
	StateIdle:         {"load_local": StateReady},
	StateReady:        {"sync": StateMerging},
	StateMerging:      {"success": StateReady, "failure": StateError},
	StateError:        {"connect": StateIdle},
}

func (s State) next(event string) (State, bool) {
	if event == "shutdown" {
		return StateDisconnected, true
	}
	edges, ok := transitions[s]
	if !ok {
		return s, false
	}
	next, ok := edges[event]
	return next, ok
}
