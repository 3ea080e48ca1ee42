// Package shopify holds the inbound webhook payload shapes. Optional
// fields are pointers so the mapper can distinguish "absent" from "zero"
// instead of relying on loose JSON access.
package shopify

import (
	"bytes"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ID tolerates both JSON numbers and strings: Shopify sends numeric ids
// on webhooks, the admin API and older exports send strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if string(data) == "null" {
		*id = ""
		return nil
	}
	*id = ID(data)
	return nil
}

func (id ID) String() string { return string(id) }

type Order struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name,omitempty"`
	OrderNumber int64      `json:"order_number,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Note        *string    `json:"note,omitempty"`

	TotalPrice    *string `json:"total_price,omitempty"`
	SubtotalPrice *string `json:"subtotal_price,omitempty"`
	TotalTax      *string `json:"total_tax,omitempty"`

	LineItems       []LineItem     `json:"line_items,omitempty"`
	Customer        *Customer      `json:"customer,omitempty"`
	ShippingAddress *Address       `json:"shipping_address,omitempty"`
	ShippingLines   []ShippingLine `json:"shipping_lines,omitempty"`
}

type LineItem struct {
	ID       ID      `json:"id"`
	Title    *string `json:"title,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
	Price    *string `json:"price,omitempty"`
}

type Customer struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type Address struct {
	Address1 *string `json:"address1,omitempty"`
	Address2 *string `json:"address2,omitempty"`
	City     *string `json:"city,omitempty"`
	Province *string `json:"province,omitempty"`
	Zip      *string `json:"zip,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type ShippingLine struct {
	Title string  `json:"title,omitempty"`
	Price *string `json:"price,omitempty"`
}

// Money parses a platform price string ("32.00"). Absent or unparseable
// values come back as zero, never as an error. Defaulting is the
// mapper's job.
func Money(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Str dereferences an optional string, empty when absent.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DisplayNumber renders the storefront-facing order number, falling back
// to the raw id when the platform sent neither name nor number.
func (o Order) DisplayNumber() string {
	if o.Name != "" {
		return o.Name
	}
	if o.OrderNumber > 0 {
		return "#" + strconv.FormatInt(o.OrderNumber, 10)
	}
	return o.ID.String()
}
