package saipos

import (
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
)

// OrderPayload is the wire shape the POS order endpoint expects.
type OrderPayload struct {
	OrderID     string           `json:"order_id"`
	DisplayID   string           `json:"display_id,omitempty"`
	CodStore    string           `json:"cod_store"`
	CreatedAt   string           `json:"created_at"`
	Notes       string           `json:"notes,omitempty"`
	Products    []ProductPayload `json:"products"`
	Customer    CustomerPayload  `json:"customer"`
	DeliveryFee float64          `json:"delivery_fee"`
	TotalAmount float64          `json:"total_amount"`
}

type ProductPayload struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type CustomerPayload struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address *AddressPayload `json:"address,omitempty"`
}

type AddressPayload struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZIP        string `json:"zip"`
}

func NewOrderPayload(o entities.MappedOrder) OrderPayload {
	products := make([]ProductPayload, 0, len(o.Products))
	for _, p := range o.Products {
		products = append(products, ProductPayload{
			ProductID:  p.ProductID,
			Name:       p.Name,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice.Round(2).InexactFloat64(),
			TotalPrice: p.TotalPrice.Round(2).InexactFloat64(),
		})
	}

	payload := OrderPayload{
		OrderID:     o.OrderID,
		DisplayID:   o.DisplayID,
		CodStore:    o.StoreCode,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		Notes:       o.Notes,
		Products:    products,
		Customer:    CustomerPayload{Name: o.Customer.Name, Phone: o.Customer.Phone},
		DeliveryFee: o.DeliveryFee.Round(2).InexactFloat64(),
		TotalAmount: o.TotalAmount.Round(2).InexactFloat64(),
	}

	if a := o.Customer.Address; a != nil {
		payload.Customer.Address = &AddressPayload{
			Street:     a.Street,
			Number:     a.Number,
			Complement: a.Complement,
			City:       a.City,
			State:      a.State,
			ZIP:        a.ZIP,
		}
	}

	return payload
}
