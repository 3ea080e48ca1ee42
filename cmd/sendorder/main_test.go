package main

import (
	"testing"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/config"

	"github.com/stretchr/testify/assert"
)

func validSaipos() config.Saipos {
	return config.Saipos{
		BaseURL:   "https://order-api.saipos.com",
		IDPartner: "partner-1",
		Secret:    "s3cret",
		StoreCode: "STORE1",
		Timeout:   30 * time.Second,
	}
}

func TestValidateCreds(t *testing.T) {
	assert.NoError(t, validateCreds(validSaipos()))

	missingPartner := validSaipos()
	missingPartner.IDPartner = ""
	assert.Error(t, validateCreds(missingPartner))

	missingSecret := validSaipos()
	missingSecret.Secret = ""
	assert.Error(t, validateCreds(missingSecret))
}
