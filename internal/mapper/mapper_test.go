package mapper_test

import (
	"testing"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/mapper"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestMapper_Map(t *testing.T) {
	m := mapper.NewWithClock("STORE1", fixedClock)

	testCases := []struct {
		name    string
		order   shopify.Order
		check   func(t *testing.T, mo entities.MappedOrder)
		wantErr error
	}{
		{
			name:    "empty payload",
			order:   shopify.Order{},
			wantErr: entities.ErrEmptyPayload,
		},
		{
			name: "full order",
			order: shopify.Order{
				ID:         "1001",
				TotalPrice: strPtr("32.00"),
				LineItems: []shopify.LineItem{
					{ID: "1", Title: strPtr("Bowl"), Quantity: 1, Price: strPtr("25.00")},
				},
				Customer: &shopify.Customer{
					FirstName: strPtr("Ana"),
					Phone:     strPtr("21999999999"),
				},
			},
			check: func(t *testing.T, mo entities.MappedOrder) {
				assert.Equal(t, "shopify_1001", mo.OrderID)
				assert.Equal(t, "STORE1", mo.StoreCode)
				require.Len(t, mo.Products, 1)
				assert.Equal(t, "1", mo.Products[0].ProductID)
				assert.Equal(t, "Bowl", mo.Products[0].Name)
				assert.Equal(t, 1, mo.Products[0].Quantity)
				assert.True(t, mo.Products[0].UnitPrice.Equal(decimal.RequireFromString("25.00")))
				assert.True(t, mo.Products[0].TotalPrice.Equal(decimal.RequireFromString("25.00")))
				assert.Equal(t, "Ana", mo.Customer.Name)
				assert.Equal(t, "21999999999", mo.Customer.Phone)
				assert.True(t, mo.TotalAmount.Equal(decimal.RequireFromString("32.00")))

				vr := mapper.Validate(mo)
				assert.True(t, vr.Valid)
				assert.Empty(t, vr.Errors)
			},
		},
		{
			name:  "missing customer gets defaults",
			order: shopify.Order{ID: "42"},
			check: func(t *testing.T, mo entities.MappedOrder) {
				assert.Equal(t, mapper.DefaultCustomer, mo.Customer.Name)
				assert.Equal(t, mapper.DefaultPhone, mo.Customer.Phone)
				assert.Nil(t, mo.Customer.Address)
			},
		},
		{
			name: "line item without title or price",
			order: shopify.Order{
				ID:        "7",
				LineItems: []shopify.LineItem{{ID: "9"}},
			},
			check: func(t *testing.T, mo entities.MappedOrder) {
				require.Len(t, mo.Products, 1)
				assert.Equal(t, mapper.DefaultProductName, mo.Products[0].Name)
				assert.Equal(t, 1, mo.Products[0].Quantity)
				assert.True(t, mo.Products[0].UnitPrice.Equal(mapper.DefaultUnitPrice))
			},
		},
		{
			name: "address flattening splits street number",
			order: shopify.Order{
				ID: "8",
				ShippingAddress: &shopify.Address{
					Address1: strPtr("Rua das Laranjeiras, 375"),
					Address2: strPtr("apto 201"),
					City:     strPtr("Rio de Janeiro"),
					Province: strPtr("RJ"),
					Zip:      strPtr("22240-006"),
				},
			},
			check: func(t *testing.T, mo entities.MappedOrder) {
				require.NotNil(t, mo.Customer.Address)
				assert.Equal(t, "Rua das Laranjeiras", mo.Customer.Address.Street)
				assert.Equal(t, "375", mo.Customer.Address.Number)
				assert.Equal(t, "apto 201", mo.Customer.Address.Complement)
				assert.Equal(t, "Rio de Janeiro", mo.Customer.Address.City)
				assert.Equal(t, "RJ", mo.Customer.Address.State)
				assert.Equal(t, "22240006", mo.Customer.Address.ZIP)
			},
		},
		{
			name: "address without trailing number defaults to S/N",
			order: shopify.Order{
				ID: "9",
				ShippingAddress: &shopify.Address{
					Address1: strPtr("Praça da Bandeira"),
				},
			},
			check: func(t *testing.T, mo entities.MappedOrder) {
				require.NotNil(t, mo.Customer.Address)
				assert.Equal(t, "Praça da Bandeira", mo.Customer.Address.Street)
				assert.Equal(t, mapper.DefaultNumber, mo.Customer.Address.Number)
			},
		},
		{
			name: "phone falls back to shipping address",
			order: shopify.Order{
				ID:              "10",
				Customer:        &shopify.Customer{FirstName: strPtr("João")},
				ShippingAddress: &shopify.Address{Phone: strPtr("21988887777")},
			},
			check: func(t *testing.T, mo entities.MappedOrder) {
				assert.Equal(t, "João", mo.Customer.Name)
				assert.Equal(t, "21988887777", mo.Customer.Phone)
			},
		},
		{
			name: "total computed from items and shipping when absent",
			order: shopify.Order{
				ID: "11",
				LineItems: []shopify.LineItem{
					{ID: "1", Title: strPtr("Bowl"), Quantity: 2, Price: strPtr("20.00")},
				},
				ShippingLines: []shopify.ShippingLine{{Title: "Entrega", Price: strPtr("8.50")}},
			},
			check: func(t *testing.T, mo entities.MappedOrder) {
				assert.True(t, mo.DeliveryFee.Equal(decimal.RequireFromString("8.50")))
				assert.True(t, mo.TotalAmount.Equal(decimal.RequireFromString("48.50")))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mo, err := m.Map(tc.order)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			tc.check(t, mo)
		})
	}
}

func TestMapper_MapIsIdempotent(t *testing.T) {
	m := mapper.NewWithClock("STORE1", fixedClock)
	order := shopify.Order{
		ID:        "1001",
		LineItems: []shopify.LineItem{{ID: "1", Title: strPtr("Bowl"), Quantity: 1, Price: strPtr("25.00")}},
		Customer:  &shopify.Customer{FirstName: strPtr("Ana")},
	}

	first, err := m.Map(order)
	require.NoError(t, err)
	second, err := m.Map(order)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMapper_CreatedAtFromOrder(t *testing.T) {
	m := mapper.NewWithClock("STORE1", fixedClock)
	created := time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)

	mo, err := m.Map(shopify.Order{ID: "1", CreatedAt: &created})
	require.NoError(t, err)
	assert.Equal(t, created, mo.CreatedAt)

	mo, err = m.Map(shopify.Order{ID: "2"})
	require.NoError(t, err)
	assert.Equal(t, fixedClock(), mo.CreatedAt)
}
