package mapper

import "github.com/brmonteiro/saipos-bridge/internal/entities"

// Validate checks the mapped payload for the fields the POS rejects
// server-side, collecting every problem instead of stopping at the
// first. It never mutates the order.
func Validate(order entities.MappedOrder) entities.ValidationResult {
	var errs []string

	if order.OrderID == "" {
		errs = append(errs, "order_id is required")
	}
	if order.CreatedAt.IsZero() {
		errs = append(errs, "created_at is required")
	}
	if len(order.Products) == 0 {
		errs = append(errs, "order must contain at least one product")
	}
	if order.Customer.Name == "" {
		errs = append(errs, "customer name is required")
	}
	if order.StoreCode == "" {
		errs = append(errs, "store code is required")
	}

	return entities.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
