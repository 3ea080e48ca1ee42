package mapper_test

import (
	"testing"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/mapper"

	"github.com/stretchr/testify/assert"
)

func validMapped() entities.MappedOrder {
	return entities.MappedOrder{
		OrderID:   "shopify_1001",
		StoreCode: "STORE1",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Products:  []entities.Product{{ProductID: "1", Name: "Bowl", Quantity: 1}},
		Customer:  entities.Customer{Name: "Ana"},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(o *entities.MappedOrder)
		wantErrs []string
	}{
		{
			name:   "valid order",
			mutate: func(o *entities.MappedOrder) {},
		},
		{
			name:     "missing order id",
			mutate:   func(o *entities.MappedOrder) { o.OrderID = "" },
			wantErrs: []string{"order_id is required"},
		},
		{
			name:     "missing created at",
			mutate:   func(o *entities.MappedOrder) { o.CreatedAt = time.Time{} },
			wantErrs: []string{"created_at is required"},
		},
		{
			name:     "no products",
			mutate:   func(o *entities.MappedOrder) { o.Products = nil },
			wantErrs: []string{"order must contain at least one product"},
		},
		{
			name:     "missing customer name",
			mutate:   func(o *entities.MappedOrder) { o.Customer.Name = "" },
			wantErrs: []string{"customer name is required"},
		},
		{
			name:     "missing store code",
			mutate:   func(o *entities.MappedOrder) { o.StoreCode = "" },
			wantErrs: []string{"store code is required"},
		},
		{
			name: "multiple failures reported together",
			mutate: func(o *entities.MappedOrder) {
				o.OrderID = ""
				o.Products = nil
				o.Customer.Name = ""
			},
			wantErrs: []string{
				"order_id is required",
				"order must contain at least one product",
				"customer name is required",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order := validMapped()
			tc.mutate(&order)

			got := mapper.Validate(order)

			if len(tc.wantErrs) == 0 {
				assert.True(t, got.Valid)
				assert.Empty(t, got.Errors)
				return
			}
			assert.False(t, got.Valid)
			assert.ElementsMatch(t, tc.wantErrs, got.Errors)
		})
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	order := validMapped()
	before := order

	mapper.Validate(order)

	assert.Equal(t, before, order)
}
