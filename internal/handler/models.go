package handler

import (
	"encoding/json"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
)

// WebhookResponse is the storefront-facing result of an order intake.
type WebhookResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"order_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type QuoteResponse struct {
	CEP               string   `json:"cep"`
	Zone              string   `json:"zone"`
	ShippingVariantID string   `json:"shipping_variant_id"`
	DeliveryPeriods   []string `json:"delivery_periods"`
}

// Submission is the outward view of a journal row.
type Submission struct {
	OrderID        string          `json:"order_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Status         string          `json:"status"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	POSResponse    string          `json:"pos_response,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Attempts       []Attempt       `json:"attempts,omitempty"`
}

type Attempt struct {
	Status      string    `json:"status"`
	POSResponse string    `json:"pos_response,omitempty"`
	Error       string    `json:"error,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}

func SubmissionEntityToJSON(s entities.Submission) Submission {
	return Submission{
		OrderID:        s.OrderID,
		IdempotencyKey: s.IdempotencyKey,
		Status:         string(s.Status),
		Payload:        json.RawMessage(s.Payload),
		POSResponse:    string(s.POSResponse),
		LastError:      s.LastError,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func AttemptEntityToJSON(a entities.Attempt) Attempt {
	return Attempt{
		Status:      string(a.Status),
		POSResponse: string(a.POSResponse),
		Error:       a.Error,
		AttemptedAt: a.AttemptedAt,
	}
}
