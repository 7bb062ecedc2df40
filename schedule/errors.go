package schedule

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidShares is returned when a bill's cost-sharing configuration
	// does not resolve to percentages summing to 100%.
	ErrInvalidShares = errors.New("invalid share configuration")

	// ErrInvalidRecurrence is returned for recurrence configurations the
	// engine would treat as inert (every < 1, missing start).
	ErrInvalidRecurrence = errors.New("invalid recurrence")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the discrepancy for display
// =============================================================================

// ShareValidationError describes exactly how a bill's shares deviate.
type ShareValidationError struct {
	Bill   string
	Payee  string // set when a single payee's percentage is at fault
	Total  decimal.Decimal
	Detail string
}

func (e *ShareValidationError) Error() string {
	if e.Payee != "" {
		return fmt.Sprintf("bill %q: payee %q: %s", e.Bill, e.Payee, e.Detail)
	}
	return fmt.Sprintf("bill %q: %s", e.Bill, e.Detail)
}

func (e *ShareValidationError) Unwrap() error { return ErrInvalidShares }

// RecurrenceConfigError pinpoints the offending recurrence field.
type RecurrenceConfigError struct {
	Field  string
	Detail string
}

func (e *RecurrenceConfigError) Error() string {
	return fmt.Sprintf("recurrence %s: %s", e.Field, e.Detail)
}

func (e *RecurrenceConfigError) Unwrap() error { return ErrInvalidRecurrence }
