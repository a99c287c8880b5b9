package ledger

import "errors"

// Operation failures. Every mutating operation is all-or-nothing: when any
// of these is returned, no balance or transaction row was changed. Anything
// else coming out of the ledger is a storage failure.
var (
	// ErrNotFound means the referenced group, member, meal, or transaction
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the acting user does not own the group the
	// referenced entity belongs to.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput covers missing required fields, non-positive amounts,
	// empty or inactive participant lists, and malformed dates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientFunds means an overhead usage request exceeded the
	// group's overhead balance.
	ErrInsufficientFunds = errors.New("insufficient overhead balance")

	// ErrInvalidOperation means a direct edit was attempted on a
	// transaction type that is derived state (meal or overhead rows);
	// those change only through the meal lifecycle or overhead usage.
	ErrInvalidOperation = errors.New("only deposit transactions can be edited directly")
)
