// Package shipping resolves a customer postal code to a delivery zone
// and its shipping variant. The current implementation is a static
// prefix table; Resolver is an interface so a distance/geocoding backed
// implementation can replace it without touching callers.
package shipping

import (
	"strings"
	"unicode"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
)

const (
	cepLength    = 8
	prefixLength = 3
)

type Resolver interface {
	Resolve(rawCEP string) (entities.Zone, error)
}

type prefixResolver struct {
	zones []entities.Zone
}

// NewPrefixResolver resolves against the given zone table. Table order
// is the tie-break: the first zone listing a prefix wins.
func NewPrefixResolver(zones []entities.Zone) Resolver {
	return &prefixResolver{zones: zones}
}

func (r *prefixResolver) Resolve(rawCEP string) (entities.Zone, error) {
	cep := SanitizeCEP(rawCEP)
	if len(cep) != cepLength {
		return entities.Zone{}, entities.ErrInvalidPostalCode
	}

	prefix := cep[:prefixLength]
	for _, zone := range r.zones {
		for _, p := range zone.Prefixes {
			if p == prefix {
				return zone, nil
			}
		}
	}
	return entities.Zone{}, entities.ErrOutOfServiceArea
}

// SanitizeCEP strips everything but digits ("22240-006" -> "22240006").
func SanitizeCEP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DefaultZones is the delivery area served today. Prefixes are the first
// three CEP digits; variants reference the storefront shipping options.
func DefaultZones() []entities.Zone {
	return []entities.Zone{
		{
			ID:                "centro",
			Label:             "Centro",
			Prefixes:          []string{"200", "201", "202", "203"},
			ShippingVariantID: "delivery-centro",
		},
		{
			ID:                "zona-sul",
			Label:             "Zona Sul",
			Prefixes:          []string{"220", "221", "222", "223", "224"},
			ShippingVariantID: "delivery-zona-sul",
		},
		{
			ID:                "tijuca",
			Label:             "Tijuca e Grande Méier",
			Prefixes:          []string{"205", "206", "207"},
			ShippingVariantID: "delivery-tijuca",
		},
		{
			ID:                "barra",
			Label:             "Barra e Recreio",
			Prefixes:          []string{"226", "227", "228"},
			ShippingVariantID: "delivery-barra",
		},
	}
}
