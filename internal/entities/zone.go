package entities

import "errors"

// Zone is one row of the static delivery-zone table: every postal code
// whose 3-digit prefix is listed belongs to the zone and ships with the
// zone's variant.
type Zone struct {
	ID                string
	Label             string
	Prefixes          []string
	ShippingVariantID string
}

// DeliveryPeriod is one of the three fixed delivery time windows.
type DeliveryPeriod string

const (
	PeriodLunch     DeliveryPeriod = "11:00-14:00"
	PeriodAfternoon DeliveryPeriod = "14:00-18:00"
	PeriodEvening   DeliveryPeriod = "18:00-22:00"
)

func DeliveryPeriods() []DeliveryPeriod {
	return []DeliveryPeriod{PeriodLunch, PeriodAfternoon, PeriodEvening}
}

var (
	ErrInvalidPostalCode = errors.New("postal code must contain exactly 8 digits")
	ErrOutOfServiceArea  = errors.New("postal code is outside the delivery area")
)
