package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports missing or invalid settings. Raised before any fetch.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication reports a credential failure from either collaborator.
	ErrAuthentication = errors.New("authentication error")
	// ErrFetch reports an incomplete or failed fetch from either collaborator.
	ErrFetch = errors.New("fetch error")
	// ErrConsistency reports mirror data the engine refuses to reconcile.
	ErrConsistency = errors.New("consistency error")
)

// Phase identifies the step of a pass an error came from.
type Phase string

const (
	// PhasePrepare covers building the collaborators: credentials and configuration.
	PhasePrepare     Phase = "prepare"
	PhaseFetchSource Phase = "fetch_source"
	PhaseFetchMirror Phase = "fetch_mirror"
	PhasePlan        Phase = "plan"
	PhaseExecute     Phase = "execute"
)

// PhaseError wraps a fatal error with the phase it occurred in.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// PhaseOf returns the phase recorded in err, or an empty phase.
func PhaseOf(err error) Phase {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}

// ActionError reports a failed mutation against the mirror.
type ActionError struct {
	Type      ActionType
	MirrorID  string
	SourceRef string
	Err       error
}

func (e *ActionError) Error() string {
	if e.MirrorID != "" {
		return fmt.Sprintf("%s %s (source %s): %v", e.Type, e.MirrorID, e.SourceRef, e.Err)
	}
	return fmt.Sprintf("%s (source %s): %v", e.Type, e.SourceRef, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// asFetchError tags collaborator errors that carry no category with ErrFetch.
func asFetchError(err error) error {
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrFetch) || errors.Is(err, ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFetch, err)
}
