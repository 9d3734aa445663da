// Package lifecycle implements the booking/payment state machine.  Every
// status mutation in the system funnels through this package; it validates
// preconditions and applies each transition as a compare-and-set against
// the backing stores, so concurrent actors (customers, experts, the
// stale-booking sweeper) can never drive one booking down two paths.
package lifecycle

import (
	"fmt"

	"github.com/homesolutions/marketplace/internal/model"
)

// NotFoundError reports that a referenced resource does not exist.
// Handlers translate it into an HTTP 404 response.
type NotFoundError struct {
	Resource string // "booking", "payment", "service", "address"
	ID       uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError reports a violated precondition: wrong status, wrong
// owner, already-paid, already-assigned.  It names what was expected
// against what was actually found so a losing expert can be told
// "already taken" rather than "booking not found".  Handlers translate
// it into an HTTP 409 response; callers must not retry without
// re-reading current state.
type ConflictError struct {
	Op       string
	Expected model.BookingStatus // zero when the conflict is not a status mismatch
	Actual   model.BookingStatus
	Reason   string // set for owner/uniqueness conflicts
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Op + ": " + e.Reason
	}
	return fmt.Sprintf("%s: expected status %s, found %s", e.Op, e.Expected, e.Actual)
}

// ValidationError reports malformed input rejected before any store
// access.  Handlers translate it into an HTTP 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
