package repo

import (
	"database/sql"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
)

type Submission struct {
	OrderID        string         `db:"order_id"`
	IdempotencyKey string         `db:"idempotency_key"`
	Status         string         `db:"status"`
	Payload        []byte         `db:"payload"`
	POSResponse    []byte         `db:"pos_response"`
	LastError      sql.NullString `db:"last_error"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type Attempt struct {
	OrderID     string         `db:"order_id"`
	Status      string         `db:"status"`
	POSResponse []byte         `db:"pos_response"`
	Error       sql.NullString `db:"error"`
	AttemptedAt time.Time      `db:"attempted_at"`
}

func (a Attempt) toEntity() entities.Attempt {
	return entities.Attempt{
		OrderID:     a.OrderID,
		Status:      entities.SubmissionStatus(a.Status),
		POSResponse: a.POSResponse,
		Error:       a.Error.String,
		AttemptedAt: a.AttemptedAt,
	}
}

func (s Submission) toEntity() entities.Submission {
	return entities.Submission{
		OrderID:        s.OrderID,
		IdempotencyKey: s.IdempotencyKey,
		Status:         entities.SubmissionStatus(s.Status),
		Payload:        s.Payload,
		POSResponse:    s.POSResponse,
		LastError:      s.LastError.String,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
