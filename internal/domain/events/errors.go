package events

import (
	"errors"
	"fmt"

	"github.com/plataforma-eventos/server/internal/store"
)

var (
	ErrNotFound = errors.New("event not found")
	// ErrForbidden is returned when the caller is neither the event's
	// creator nor an admin (or, for some operations, not the creator).
	ErrForbidden = errors.New("not allowed for this event")
	// ErrFinalized mirrors the store-level invariant: finalized events
	// accept no further mutation.
	ErrFinalized = store.ErrEventFinalized
	// ErrAlreadyFinalized is returned when finalizing twice.
	ErrAlreadyFinalized = errors.New("event already finalized")
	// ErrReportIncomplete gates finalization on report completeness.
	ErrReportIncomplete = errors.New("finalization requires a report with a summary and at least one image")
	// ErrNoReport is returned when downloading media for an event without one.
	ErrNoReport = errors.New("event has no report")
)

// ValidationError marks a rejected field in a create/update payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
