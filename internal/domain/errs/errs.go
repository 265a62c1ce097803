package errs

import "errors"

// Every guard violation maps to exactly one of these sentinels. They are
// checked with errors.Is across usecases and translated to HTTP status
// codes in one place by the adapter.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyExists     = errors.New("record already exists")
	ErrUnauthorized      = errors.New("caller not authorized for this operation")
	ErrInvalidState      = errors.New("operation not legal in current state")
	ErrInvalidRange      = errors.New("numeric or temporal invariant violated")
	ErrExpired           = errors.New("record past its expiry")
	ErrAmountMismatch    = errors.New("amount disagrees with the record")
	ErrTermMismatch      = errors.New("term disagrees with the record")
	ErrAlreadyVerified   = errors.New("document already verified")
	ErrInsufficientFunds = errors.New("insufficient account balance")
)
