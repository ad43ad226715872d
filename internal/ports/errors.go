package ports

import (
	"errors"
	"fmt"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

var (
	// ErrTimeout marks a capability call that exceeded its per-call deadline.
	ErrTimeout = errors.New("capability call timed out")
	// ErrRateLimited marks a capability refusal that is safe to retry.
	ErrRateLimited = errors.New("capability rate limited")

	ErrProjectNotFound = errors.New("project not found")
)

// CapabilityError is a failure reported by the translation backend.
// Transient errors are retried by the executor; permanent ones are not.
type CapabilityError struct {
	Status    int
	Message   string
	Transient bool
}

func (e *CapabilityError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("capability error (status %d): %s", e.Status, e.Message)
	}
	return "capability error: " + e.Message
}

// ChunkingError means the uploaded content could not be split; the owning
// project goes to the terminal error status.
type ChunkingError struct {
	Reason string
}

func (e *ChunkingError) Error() string { return "chunking failed: " + e.Reason }

// InvalidTransitionError is returned when a lifecycle operation is not legal
// from the project's current status. State is left unchanged.
type InvalidTransitionError struct {
	ProjectID int64
	From      domain.Status
	Op        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s project %d in status %q", e.Op, e.ProjectID, e.From)
}
