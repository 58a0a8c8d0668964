/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The transport layer maps them to status codes with the helpers at the
  bottom of this file.

ERROR CATEGORIES:
  1. NotFound        - Referenced customer/table/reservation does not exist
  2. PolicyViolation - A business rule guard failed (client-correctable)
  3. Unavailable     - Valid request, but no table can satisfy it
  4. Store conflicts - Uniqueness or exclusion constraints hit at commit
  Anything else is an infrastructure failure.

USAGE:
  if errors.Is(err, booking.ErrPolicyViolation) {
      var pe *booking.PolicyError
      errors.As(err, &pe) // pe.Rule, pe.Message
  }

SEE ALSO:
  - lifecycle.go: Raises most of these
  - api/handlers.go: writeServiceError maps them to HTTP
*/
package booking

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrPolicyViolation is returned when a business rule rejects the request.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrUnavailable is returned when no table can satisfy a valid request.
	ErrUnavailable = errors.New("no tables available")

	// ErrDuplicateCode is returned by stores when a confirmation code is
	// already taken.
	ErrDuplicateCode = errors.New("duplicate confirmation code")

	// ErrDuplicateTableNumber is returned by stores when a table number is
	// already taken (case-insensitive).
	ErrDuplicateTableNumber = errors.New("duplicate table number")

	// ErrDoubleBooking is returned by stores when an active reservation would
	// overlap another active reservation on the same table.
	ErrDoubleBooking = errors.New("table already booked for the requested time")

	// ErrConcurrentModification is returned when the database aborts a
	// transaction because of a concurrent writer.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing entity.
type NotFoundError struct {
	Kind string // "customer", "table", "reservation"
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(kind string, id any) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// PolicyError carries a machine-readable rule and a human-readable message.
type PolicyError struct {
	Rule    string
	Message string
}

func (e *PolicyError) Error() string {
	return e.Message
}

func (e *PolicyError) Unwrap() error {
	return ErrPolicyViolation
}

func violation(rule, format string, args ...any) error {
	return &PolicyError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// Policy rules.
const (
	RuleCustomerBlacklisted = "customer_blacklisted"
	RuleMomentInPast        = "moment_in_past"
	RuleBeyondHorizon       = "beyond_booking_horizon"
	RulePartySize           = "party_size"
	RuleDuration            = "duration"
	RuleInvalidTransition   = "invalid_transition"
	RuleCancellationWindow  = "cancellation_window"
	RuleNoShowTooEarly      = "no_show_too_early"
	RuleTableInactive       = "table_inactive"
	RuleTableCapacity       = "table_capacity"
	RuleTableBounds         = "table_bounds"
	RuleDuplicateTable      = "duplicate_table_number"
	RuleTableInUse          = "table_in_use"
	RuleInvalidInput        = "invalid_input"
)

// UnavailableError describes a request that no table could satisfy.
type UnavailableError struct {
	Moment    time.Time
	PartySize int
	Reason    string
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("no available tables for %d guests at %s",
		e.PartySize, e.Moment.Format("2006-01-02 15:04"))
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrPolicyViolation) ||
		errors.Is(err, ErrDuplicateTableNumber)
}

// IsUnavailable returns true if the request was valid but inventory could not
// satisfy it, including constraint conflicts detected at commit.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrDoubleBooking) ||
		errors.Is(err, ErrDuplicateCode)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
