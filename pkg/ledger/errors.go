package ledger

import "errors"

// Precondition errors: rejected before any state change, recoverable with
// corrected input.
var (
	ErrZeroAddress        = errors.New("zero address")
	ErrZeroAmount         = errors.New("amount must be positive")
	ErrZeroID             = errors.New("achievement id must be positive")
	ErrInvalidTokenID     = errors.New("invalid external token id")
	ErrInvalidPrice       = errors.New("price must be a non-negative integer")
	ErrPriceOverflow      = errors.New("price exceeds 255 bits")
	ErrLengthMismatch     = errors.New("batch input lengths do not match")
	ErrIDExhausted        = errors.New("achievement id counter exhausted")
	ErrUnknownAchievement = errors.New("achievement not minted")
)

// Authorization errors.
var (
	ErrNotAdmin            = errors.New("caller is not the ledger admin")
	ErrNotTokenOwner       = errors.New("caller does not own the external token")
	ErrInsufficientBalance = errors.New("insufficient achievement balance")
)

// State conflict errors.
var (
	ErrAlreadyBound     = errors.New("achievement already bound to token")
	ErrNotBound         = errors.New("achievement not bound to token")
	ErrPermanentlyBound = errors.New("achievement is permanently bound")
)

// Payment errors.
var (
	ErrNoPayee         = errors.New("no payee configured")
	ErrPaymentMismatch = errors.New("submitted value does not equal price")
)
