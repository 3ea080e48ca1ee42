package shipping_test

import (
	"testing"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/shipping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZones() []entities.Zone {
	return []entities.Zone{
		{ID: "centro", Label: "Centro", Prefixes: []string{"200", "201"}, ShippingVariantID: "delivery-centro"},
		{ID: "zona-sul", Label: "Zona Sul", Prefixes: []string{"222", "201"}, ShippingVariantID: "delivery-zona-sul"},
	}
}

func TestPrefixResolver_Resolve(t *testing.T) {
	r := shipping.NewPrefixResolver(testZones())

	testCases := []struct {
		name        string
		cep         string
		wantVariant string
		wantErr     error
	}{
		{name: "exact match", cep: "20040002", wantVariant: "delivery-centro"},
		{name: "formatted cep", cep: "22240-006", wantVariant: "delivery-zona-sul"},
		{name: "cep with spaces", cep: " 20040 002 ", wantVariant: "delivery-centro"},
		{name: "overlapping prefix picks first zone", cep: "20140001", wantVariant: "delivery-centro"},
		{name: "too short", cep: "2224000", wantErr: entities.ErrInvalidPostalCode},
		{name: "too long", cep: "222400061", wantErr: entities.ErrInvalidPostalCode},
		{name: "empty", cep: "", wantErr: entities.ErrInvalidPostalCode},
		{name: "letters only", cep: "abcdefgh", wantErr: entities.ErrInvalidPostalCode},
		{name: "out of service area", cep: "05435-000", wantErr: entities.ErrOutOfServiceArea},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			zone, err := r.Resolve(tc.cep)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantVariant, zone.ShippingVariantID)
		})
	}
}

func TestSanitizeCEP(t *testing.T) {
	assert.Equal(t, "05435000", shipping.SanitizeCEP("05435-000"))
	assert.Equal(t, "22240006", shipping.SanitizeCEP("22.240-006"))
	assert.Equal(t, "", shipping.SanitizeCEP("cep"))
}

func TestDefaultZones_PrefixesAreThreeDigits(t *testing.T) {
	for _, zone := range shipping.DefaultZones() {
		require.NotEmpty(t, zone.Prefixes, "zone %s", zone.ID)
		for _, p := range zone.Prefixes {
			assert.Len(t, p, 3, "zone %s prefix %s", zone.ID, p)
		}
		assert.NotEmpty(t, zone.ShippingVariantID, "zone %s", zone.ID)
	}
}

func TestDeliveryPeriods(t *testing.T) {
	periods := entities.DeliveryPeriods()
	require.Len(t, periods, 3)
	assert.Equal(t, entities.PeriodLunch, periods[0])
}
