package payments

import (
	"errors"
	"fmt"
	"strings"

	"institute-admin/app/models"
)

// ErrBusy is returned when a submission is already in flight. The second
// caller is rejected outright; nothing is queued.
var ErrBusy = errors.New("a payment submission is already in progress")

// ErrNotFound is returned when an operation targets a staged item id that is
// not in the list.
var ErrNotFound = errors.New("staged payment item not found")

// SequenceViolationError reports an attempt to un-stage a term-sequenced line
// out of order.
type SequenceViolationError struct {
	Purpose models.PaymentPurpose
	Term    int
	MaxTerm int
}

func (e *SequenceViolationError) Error() string {
	return fmt.Sprintf("cannot remove %s term %d while term %d is staged; remove later terms first",
		e.Purpose, e.Term, e.MaxTerm)
}

// ValidationError carries the user-facing message list produced by
// ValidateForm. It is data for inline display, not a fault.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "payment validation failed: " + strings.Join(e.Messages, "; ")
}

// DuplicateItemError reports two staged lines sharing the same composite key.
type DuplicateItemError struct {
	Label string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("duplicate payment line for %s", e.Label)
}

// SystemError wraps a transport or backend failure (including aborts) so the
// operator can retry without re-entering staged data.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("payment service failure: %v", e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}
