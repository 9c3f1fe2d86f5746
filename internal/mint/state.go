package mint

import (
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
)

// State is the position of a session in the mint workflow
type State string

const (
	StateIdle     State = "idle"
	StateCreating State = "creating"
	StateCreated  State = "created"
	StateUpdating State = "updating"
	StateStored   State = "stored"
	StateWriting  State = "writing"
	StateMinted   State = "minted"
	StateFailed   State = "failed"
)

// Stage aliases the error stage a failed session records
type Stage = apperrors.Stage

// transitions lists every allowed edge; anything else is refused
var transitions = map[State][]State{
	StateIdle:     {StateCreating},
	StateCreating: {StateCreated, StateFailed},
	StateCreated:  {StateUpdating, StateFailed},
	StateUpdating: {StateStored, StateFailed},
	StateStored:   {StateWriting, StateFailed},
	StateWriting:  {StateMinted, StateFailed},
}

// CanTransition reports whether from -> to is an allowed edge
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// AllStates lists the states in workflow order
func AllStates() []State {
	return []State{
		StateIdle, StateCreating, StateCreated, StateUpdating,
		StateStored, StateWriting, StateMinted, StateFailed,
	}
}
