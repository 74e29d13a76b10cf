package bridge

import (
	"errors"
	"fmt"

	"github.com/voxelforge/gdmc-bridge/bridge/session"
	"github.com/voxelforge/gdmc-bridge/world"
)

// Kind classifies a failed operation. Every error leaving the dispatch or
// query layer carries exactly one kind; transports map kinds to their own
// status vocabulary without parsing message text.
type Kind string

const (
	// KindValidation marks a malformed request. No world access happened.
	KindValidation Kind = "validation_error"

	// KindSessionUnavailable marks a call made before the session started or
	// after it stopped.
	KindSessionUnavailable Kind = "session_unavailable"

	// KindConnection marks a backend that could not be reached after retries.
	KindConnection Kind = "connection_error"

	// KindPrecondition marks an operator-side condition the caller can fix,
	// such as an undesignated build area.
	KindPrecondition Kind = "precondition_failed"

	// KindOutOfBounds marks a query that hit unloaded or out-of-world
	// coordinates.
	KindOutOfBounds Kind = "out_of_bounds"

	// KindUnavailable marks data the backend does not have for the request,
	// such as a heightmap type with no samples.
	KindUnavailable Kind = "unavailable"

	// KindOperationFailed is the residual kind for backend faults.
	KindOperationFailed Kind = "operation_failed"
)

// Error is the classified operation failure. Op names the operation that
// failed; Args optionally echoes the offending inputs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Args    map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, defaulting to
// KindOperationFailed for unclassified errors.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindOperationFailed
}

// ValidationError reports a malformed request for op.
func ValidationError(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
}

// OutOfBounds reports a query into unloaded or out-of-world coordinates.
func OutOfBounds(op string, pos world.Position) *Error {
	return &Error{
		Kind:    KindOutOfBounds,
		Op:      op,
		Message: fmt.Sprintf("position %s is outside the loaded world", pos),
		Args:    map[string]any{"position": pos.Slice()},
	}
}

// Normalize classifies err for op. Already-classified errors pass through
// untouched; known sentinels map to their kinds; anything else becomes an
// operation failure.
func Normalize(op string, err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	switch {
	case errors.Is(err, session.ErrUnavailable):
		return &Error{Kind: KindSessionUnavailable, Op: op, Message: "no active world session", Err: err}
	case errors.Is(err, world.ErrUnreachable):
		return &Error{Kind: KindConnection, Op: op, Message: err.Error(), Err: err}
	case errors.Is(err, world.ErrBuildAreaNotSet):
		return &Error{Kind: KindPrecondition, Op: op, Message: "build area has not been set, run /setbuildarea in game", Err: err}
	case errors.Is(err, world.ErrNoHeightmapData):
		return &Error{Kind: KindUnavailable, Op: op, Message: err.Error(), Err: err}
	}
	return &Error{Kind: KindOperationFailed, Op: op, Message: err.Error(), Err: err}
}
