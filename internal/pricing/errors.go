package pricing

import "errors"

var (
	// ErrTypeMismatch is returned when the basket is not a sequence of item identifiers.
	ErrTypeMismatch = errors.New("basket is not a sequence of item identifiers")
	// ErrUnknownItem is returned when the basket names an item missing from the catalog.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInvalidRules is returned when a pricing configuration cannot be compiled.
	ErrInvalidRules = errors.New("invalid pricing rules")
)

// InvalidTotal is the checkout total reported for a rejected basket.
const InvalidTotal Money = -1
