package dispatch

import "fmt"

// Stage is the per-message processing state.
type Stage int

const (
	StageIdle Stage = iota
	StageReceived
	StageLengthChecked
	StageIdentifierChecked
	StageGateChecked
	StageExecuted
	StageRejected
	StageSent
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageReceived:
		return "received"
	case StageLengthChecked:
		return "length_checked"
	case StageIdentifierChecked:
		return "identifier_checked"
	case StageGateChecked:
		return "gate_checked"
	case StageExecuted:
		return "executed"
	case StageRejected:
		return "rejected"
	case StageSent:
		return "sent"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Rejection names the check that turned a task away.
type Rejection string

const (
	RejectNone       Rejection = ""
	RejectLength     Rejection = "length"
	RejectIdentifier Rejection = "identifier"
	RejectGate       Rejection = "gate"
)

// Transition validates one step of the per-message state machine.
func Transition(from, to Stage) error {
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("dispatch: disallowed transition %s -> %s", from, to)
	}
	return nil
}

func isAllowedTransition(from, to Stage) bool {
	switch from {
	case StageIdle:
		return to == StageReceived
	case StageReceived:
		return to == StageLengthChecked || to == StageRejected
	case StageLengthChecked:
		return to == StageIdentifierChecked || to == StageRejected
	case StageIdentifierChecked:
		return to == StageGateChecked || to == StageRejected
	case StageGateChecked:
		return to == StageExecuted
	case StageExecuted, StageRejected:
		return to == StageSent
	default:
		return false
	}
}
