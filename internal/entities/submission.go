package entities

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"
)

type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusDelivered SubmissionStatus = "delivered"
	StatusFailed    SubmissionStatus = "failed"
)

// Submission is one journal row: the mapped payload as it was (or will
// be) sent to the POS, plus the outcome of the last attempt.
type Submission struct {
	OrderID        string
	IdempotencyKey string
	Status         SubmissionStatus
	Payload        []byte
	POSResponse    []byte
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Attempt is one POS submission attempt for a journal row, kept so the
// operator can see what the POS answered on every manual re-run.
type Attempt struct {
	OrderID     string
	Status      SubmissionStatus
	POSResponse []byte
	Error       string
	AttemptedAt time.Time
}

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyDelivered   = errors.New("order already delivered to POS")
	ErrInvalidSubmission  = errors.New("invalid submission data")
)

func (s *Submission) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Submission) Unmarshal(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	return dec.Decode(s)
}

func init() {
	gob.Register(Submission{})
}
