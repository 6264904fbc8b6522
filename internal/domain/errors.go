package domain

import (
	"fmt"
)

// ValidationError rejects malformed input before any store round-trip.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError names the product and size a checkout could not
// satisfy. It is not retriable without changing the cart.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Size      Size
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s size %s: requested %d, available %d",
		e.ProductID, e.Size, e.Requested, e.Available)
}
