// Package businessflow contains the core business logic and use cases for the portal workflows
package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

// Business flow error constants
var (
	// Request-related errors
	ErrAccountRequestNotFound = errors.New("account request not found")
	ErrResetRequestNotFound   = errors.New("reset request not found")
	ErrInvalidRequestStatus   = errors.New("invalid request status")
	ErrDepEdEmailRequired     = errors.New("a valid @deped.gov.ph email is required")

	// Ticket number errors
	ErrTicketNumberRequired    = errors.New("ticket number is required")
	ErrInvalidTicketNumber     = errors.New("ticket number format is not recognized")
	ErrTicketNotFound          = errors.New("no request found for this ticket number")
	ErrTicketSequenceExhausted = errors.New("daily ticket sequence exhausted")

	// Batch-related errors
	ErrBatchNotFound        = errors.New("batch not found")
	ErrBatchNumberRequired  = errors.New("batch number is required")
	ErrSendDateRequired     = errors.New("send date is required")
	ErrInvalidSendDate      = errors.New("send date must be formatted as YYYY-MM-DD")
	ErrSchoolRequired       = errors.New("school code and school name are required")
	ErrDevicesRequired      = errors.New("at least one device is required")
	ErrDeviceFieldsRequired = errors.New("device type and serial number are required for every device")
	ErrDevicesNotInBatch    = errors.New("one or more devices do not belong to this batch")
	ErrDeviceNotFound       = errors.New("device not found")
	ErrDeviceNameRequired   = errors.New("device name is required")
	ErrSchoolNotFound       = errors.New("school not found")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// DuplicateSerialError is returned when one or more device serial numbers in
// a submission already exist in any batch, or repeat within the submission.
type DuplicateSerialError struct {
	Serials []string
}

func (e *DuplicateSerialError) Error() string {
	return fmt.Sprintf("duplicate device serial numbers: %s", strings.Join(e.Serials, ", "))
}

func NewDuplicateSerialError(serials []string) *DuplicateSerialError {
	return &DuplicateSerialError{Serials: serials}
}

// StateTransitionError is returned when a batch status change is not allowed
// from the batch's current state.
type StateTransitionError struct {
	From string
	To   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition batch from %s to %s", e.From, e.To)
}

func IsAccountRequestNotFound(err error) bool {
	return errors.Is(err, ErrAccountRequestNotFound)
}

func IsResetRequestNotFound(err error) bool {
	return errors.Is(err, ErrResetRequestNotFound)
}

func IsInvalidTicketNumber(err error) bool {
	return errors.Is(err, ErrInvalidTicketNumber)
}

func IsTicketNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

func IsTicketSequenceExhausted(err error) bool {
	return errors.Is(err, ErrTicketSequenceExhausted)
}

func IsBatchNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

func IsDevicesNotInBatch(err error) bool {
	return errors.Is(err, ErrDevicesNotInBatch)
}

func IsDeviceNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound)
}

func IsDuplicateSerial(err error) bool {
	var dup *DuplicateSerialError
	return errors.As(err, &dup)
}

func IsStateTransition(err error) bool {
	var st *StateTransitionError
	return errors.As(err, &st)
}
