// Package mapper converts storefront orders into the payload shape the
// Saipos POS expects. Missing optional data is defaulted, never fatal:
// the submission must still be attemptable so the store staff see the
// order even when the platform payload is thin.
package mapper

import (
	"strings"
	"time"
	"unicode"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"

	"github.com/shopspring/decimal"
)

const (
	OrderIDPrefix      = "shopify_"
	DefaultCustomer    = "Cliente não identificado"
	DefaultPhone       = "00000000000"
	DefaultProductName = "Produto"
	DefaultNumber      = "S/N"
)

// DefaultUnitPrice is the charge-something floor for items whose price
// the platform omitted or sent unparseable.
var DefaultUnitPrice = decimal.RequireFromString("0.01")

type Mapper struct {
	storeCode string
	now       func() time.Time
}

func New(storeCode string) *Mapper {
	return &Mapper{storeCode: storeCode, now: time.Now}
}

// NewWithClock pins the creation-timestamp fallback, keeping Map
// referentially transparent for callers that need it.
func NewWithClock(storeCode string, now func() time.Time) *Mapper {
	return &Mapper{storeCode: storeCode, now: now}
}

// Map builds a MappedOrder from a platform order. The only hard failure
// is a payload without an identifying field.
func (m *Mapper) Map(order shopify.Order) (entities.MappedOrder, error) {
	if order.ID == "" {
		return entities.MappedOrder{}, entities.ErrEmptyPayload
	}

	createdAt := m.now().UTC()
	if order.CreatedAt != nil {
		createdAt = order.CreatedAt.UTC()
	}

	products := mapProducts(order.LineItems)
	deliveryFee := shippingTotal(order.ShippingLines)

	total := shopify.Money(order.TotalPrice)
	if total.IsZero() {
		for _, p := range products {
			total = total.Add(p.TotalPrice)
		}
		total = total.Add(deliveryFee)
	}

	return entities.MappedOrder{
		OrderID:     OrderIDPrefix + order.ID.String(),
		DisplayID:   strings.TrimPrefix(order.DisplayNumber(), "#"),
		StoreCode:   m.storeCode,
		CreatedAt:   createdAt,
		Notes:       shopify.Str(order.Note),
		Products:    products,
		Customer:    mapCustomer(order.Customer, order.ShippingAddress),
		DeliveryFee: deliveryFee,
		TotalAmount: total,
	}, nil
}

func mapProducts(items []shopify.LineItem) []entities.Product {
	products := make([]entities.Product, 0, len(items))
	for _, it := range items {
		name := shopify.Str(it.Title)
		if name == "" {
			name = DefaultProductName
		}

		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}

		unit := shopify.Money(it.Price)
		if unit.LessThanOrEqual(decimal.Zero) {
			unit = DefaultUnitPrice
		}

		products = append(products, entities.Product{
			ProductID:  it.ID.String(),
			Name:       name,
			Quantity:   qty,
			UnitPrice:  unit,
			TotalPrice: unit.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return products
}

func mapCustomer(c *shopify.Customer, addr *shopify.Address) entities.Customer {
	customer := entities.Customer{
		Name:  DefaultCustomer,
		Phone: DefaultPhone,
	}

	if c != nil {
		name := strings.TrimSpace(strings.TrimSpace(shopify.Str(c.FirstName)) + " " + strings.TrimSpace(shopify.Str(c.LastName)))
		if name != "" {
			customer.Name = name
		}
		if phone := shopify.Str(c.Phone); phone != "" {
			customer.Phone = phone
		}
	}

	if addr != nil {
		if customer.Phone == DefaultPhone {
			if phone := shopify.Str(addr.Phone); phone != "" {
				customer.Phone = phone
			}
		}
		customer.Address = mapAddress(addr)
	}

	return customer
}

func mapAddress(addr *shopify.Address) *entities.Address {
	street, number := splitStreetNumber(shopify.Str(addr.Address1))
	return &entities.Address{
		Street:     street,
		Number:     number,
		Complement: shopify.Str(addr.Address2),
		City:       shopify.Str(addr.City),
		State:      shopify.Str(addr.Province),
		ZIP:        digitsOnly(shopify.Str(addr.Zip)),
	}
}

// splitStreetNumber pulls the house number out of a single-line address
// ("Rua das Laranjeiras, 375" -> street + "375"). Addresses without a
// trailing numeric segment keep the whole line and get "S/N".
func splitStreetNumber(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", DefaultNumber
	}

	if idx := strings.LastIndex(line, ","); idx >= 0 {
		tail := strings.TrimSpace(line[idx+1:])
		if tail != "" && isNumeric(tail) {
			return strings.TrimSpace(line[:idx]), tail
		}
	}
	return line, DefaultNumber
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func shippingTotal(lines []shopify.ShippingLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(shopify.Money(l.Price))
	}
	return total
}
