package services

import (
	"fmt"

	"github.com/google/uuid"
)

// fetchState tracks how far a single-listing fetch got before it stopped.
// The state is carried on PipelineError so operators can tell a login wall
// from a navigation timeout from a reconcile bug without reading stack traces.
type fetchState int

const (
	stateStart fetchState = iota
	stateLoggedIn
	stateNavigated
	stateReady
	stateExtracted
	stateReconciled
	stateDerivedUpdated
)

func (s fetchState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateLoggedIn:
		return "logged-in"
	case stateNavigated:
		return "navigated"
	case stateReady:
		return "ready"
	case stateExtracted:
		return "extracted"
	case stateReconciled:
		return "reconciled"
	case stateDerivedUpdated:
		return "derived-state-updated"
	default:
		return fmt.Sprintf("fetchState(%d)", int(s))
	}
}

// PipelineError wraps a fatal fetch failure with where it happened and what
// had been extracted up to that point.
type PipelineError struct {
	ScrapID  uuid.UUID
	State    fetchState
	Snapshot *ScrapData
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("fetch scrap %s: failed at %s: %v", e.ScrapID, e.State, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
