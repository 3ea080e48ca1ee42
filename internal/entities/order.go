package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MappedOrder is the POS-shaped representation of a storefront order.
// It is built once by the mapper and never mutated afterwards.
type MappedOrder struct {
	OrderID     string
	DisplayID   string
	StoreCode   string
	CreatedAt   time.Time
	Notes       string
	Products    []Product
	Customer    Customer
	DeliveryFee decimal.Decimal
	TotalAmount decimal.Decimal
}

type Product struct {
	ProductID  string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

type Customer struct {
	Name    string
	Phone   string
	Address *Address
}

// Address is the flattened shipping address sent to the POS.
type Address struct {
	Street     string
	Number     string
	Complement string
	City       string
	State      string
	ZIP        string
}

// ValidationResult is produced by the post-mapping validator and consumed
// within a single request cycle.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

var (
	ErrEmptyPayload = errors.New("order payload is empty")
)

// ValidationError carries the validator messages across the service
// boundary so handlers can answer 422 with the full list.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "order validation failed"
	}
	return "order validation failed: " + e.Messages[0]
}
