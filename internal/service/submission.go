package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/mapper"
	"github.com/brmonteiro/saipos-bridge/internal/saipos"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"
	"github.com/brmonteiro/saipos-bridge/pkg/trm"
	"github.com/brmonteiro/saipos-bridge/pkg/utils"

	"github.com/google/uuid"
)

type SubmissionRepo interface {
	CreatePending(ctx context.Context, s entities.Submission) (bool, error)
	GetByOrderID(ctx context.Context, orderID string) (entities.Submission, error)
	ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]entities.Submission, error)
	MarkDelivered(ctx context.Context, orderID string, posResponse []byte) error
	MarkFailed(ctx context.Context, orderID string, posResponse []byte, lastError string) error
	AddAttempt(ctx context.Context, a entities.Attempt) error
	ListAttempts(ctx context.Context, orderID string) ([]entities.Attempt, error)
}

// POSClient is the auth-then-submit sequence against the POS. It must
// not retry internally; the error carries the raw POS body.
type POSClient interface {
	Submit(ctx context.Context, idempotencyKey string, body []byte) ([]byte, error)
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Result is what the intake paths report back to the storefront.
type Result struct {
	OrderID   string
	Duplicate bool
	Timestamp time.Time
}

type SubmissionService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      SubmissionRepo
	cache     Cache
	pos       POSClient
	mapper    *mapper.Mapper
}

func NewSubmissionService(logger *slog.Logger, txManager trm.Manager, repo SubmissionRepo, cache Cache, pos POSClient, m *mapper.Mapper) *SubmissionService {
	return &SubmissionService{
		logger:    logger.With(slog.String("service", "submission")),
		txManager: txManager,
		repo:      repo,
		cache:     cache,
		pos:       pos,
		mapper:    m,
	}
}

var journalRetry = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  5,
	Multiplier:   2,
}

// ProcessOrder runs the full intake pipeline: map, validate, journal,
// submit. An order already delivered to the POS is not submitted again;
// the recorded outcome is returned with Duplicate set.
func (s *SubmissionService) ProcessOrder(ctx context.Context, order shopify.Order) (Result, error) {
	mapped, err := s.mapper.Map(order)
	if err != nil {
		return Result{}, err
	}

	if vr := mapper.Validate(mapped); !vr.Valid {
		return Result{}, &entities.ValidationError{Messages: vr.Errors}
	}

	orderID := mapped.OrderID

	if res, ok := s.cachedResult(orderID); ok {
		return res, nil
	}

	sub, fresh, err := s.loadOrCreateSubmission(ctx, mapped)
	if err != nil {
		return Result{}, err
	}
	if !fresh && sub.Status == entities.StatusDelivered {
		s.cacheSubmission(sub)
		return Result{OrderID: orderID, Duplicate: true, Timestamp: sub.UpdatedAt}, nil
	}

	return s.submit(ctx, sub)
}

// Resubmit re-sends a journaled payload exactly as recorded, reusing
// the original idempotency key.
func (s *SubmissionService) Resubmit(ctx context.Context, orderID string) (Result, error) {
	sub, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if sub.Status == entities.StatusDelivered {
		return Result{}, entities.ErrAlreadyDelivered
	}
	if len(sub.Payload) == 0 {
		return Result{}, entities.ErrInvalidSubmission
	}
	return s.submit(ctx, sub)
}

func (s *SubmissionService) GetSubmission(ctx context.Context, orderID string) (entities.Submission, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, status entities.SubmissionStatus, limit int) ([]entities.Submission, error) {
	return s.repo.ListByStatus(ctx, status, limit)
}

func (s *SubmissionService) ListAttempts(ctx context.Context, orderID string) ([]entities.Attempt, error) {
	return s.repo.ListAttempts(ctx, orderID)
}

// WarmUpCache preloads the dedupe cache with the latest delivered
// submissions so a restart does not forget recent orders.
func (s *SubmissionService) WarmUpCache(ctx context.Context, count int) error {
	subs, err := s.repo.ListByStatus(ctx, entities.StatusDelivered, count)
	if err != nil {
		return fmt.Errorf("failed to warm up cache: %w", err)
	}
	for _, sub := range subs {
		s.cacheSubmission(sub)
	}
	s.logger.Info("cache warmed up", slog.Int("submissions", len(subs)))
	return nil
}

func (s *SubmissionService) loadOrCreateSubmission(ctx context.Context, mapped entities.MappedOrder) (entities.Submission, bool, error) {
	existing, err := s.repo.GetByOrderID(ctx, mapped.OrderID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, entities.ErrSubmissionNotFound) {
		return entities.Submission{}, false, err
	}

	payload, err := json.Marshal(saipos.NewOrderPayload(mapped))
	if err != nil {
		return entities.Submission{}, false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	sub := entities.Submission{
		OrderID:        mapped.OrderID,
		IdempotencyKey: uuid.NewString(),
		Status:         entities.StatusPending,
		Payload:        payload,
	}

	var inserted bool
	fn := func() error {
		var err error
		inserted, err = s.repo.CreatePending(ctx, sub)
		return err
	}
	if err := utils.Retry(journalRetry, fn); err != nil {
		return entities.Submission{}, false, fmt.Errorf("failed to journal submission: %w", err)
	}

	// a concurrent intake journaled this order first; its key and
	// payload are the ones of record, ours are discarded
	if !inserted {
		existing, err := s.repo.GetByOrderID(ctx, mapped.OrderID)
		if err != nil {
			return entities.Submission{}, false, err
		}
		return existing, false, nil
	}

	s.logger.Debug("submission journaled", slog.String("order_id", sub.OrderID))
	return sub, true, nil
}

func (s *SubmissionService) submit(ctx context.Context, sub entities.Submission) (Result, error) {
	posResponse, submitErr := s.pos.Submit(ctx, sub.IdempotencyKey, sub.Payload)

	if submitErr != nil {
		s.recordOutcome(ctx, sub.OrderID, entities.StatusFailed, posBody(submitErr), submitErr.Error())
		s.logger.Error("pos submission failed",
			slog.String("order_id", sub.OrderID),
			slog.Any("error", submitErr),
		)
		return Result{}, fmt.Errorf("pos submission failed: %w", submitErr)
	}

	now := time.Now().UTC()
	s.recordOutcome(ctx, sub.OrderID, entities.StatusDelivered, posResponse, "")

	sub.Status = entities.StatusDelivered
	sub.POSResponse = posResponse
	sub.UpdatedAt = now
	s.cacheSubmission(sub)

	s.logger.Info("order delivered to pos", slog.String("order_id", sub.OrderID))
	return Result{OrderID: sub.OrderID, Timestamp: now}, nil
}

// recordOutcome journals the terminal state and the attempt row in one
// transaction. A journal failure is logged, not surfaced: the POS call
// already happened and its outcome must win.
func (s *SubmissionService) recordOutcome(ctx context.Context, orderID string, status entities.SubmissionStatus, posResponse []byte, errText string) {
	fn := func() error {
		return s.txManager.Do(ctx, func(ctx context.Context) error {
			var err error
			if status == entities.StatusDelivered {
				err = s.repo.MarkDelivered(ctx, orderID, posResponse)
			} else {
				err = s.repo.MarkFailed(ctx, orderID, posResponse, errText)
			}
			if err != nil {
				return err
			}
			return s.repo.AddAttempt(ctx, entities.Attempt{
				OrderID:     orderID,
				Status:      status,
				POSResponse: posResponse,
				Error:       errText,
				AttemptedAt: time.Now().UTC(),
			})
		})
	}

	if err := utils.Retry(journalRetry, fn, entities.ErrSubmissionNotFound); err != nil {
		s.logger.Error("failed to record submission outcome",
			slog.String("order_id", orderID),
			slog.Any("error", err),
		)
	}
}

func (s *SubmissionService) cachedResult(orderID string) (Result, bool) {
	data, ok := s.cache.Get(orderID)
	if !ok {
		return Result{}, false
	}
	var sub entities.Submission
	if err := sub.Unmarshal(data); err != nil {
		s.logger.Error("failed to unmarshal cached submission", slog.Any("error", err))
		return Result{}, false
	}
	if sub.Status != entities.StatusDelivered {
		return Result{}, false
	}
	return Result{OrderID: orderID, Duplicate: true, Timestamp: sub.UpdatedAt}, true
}

func (s *SubmissionService) cacheSubmission(sub entities.Submission) {
	data, err := sub.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal submission", slog.Any("error", err))
		return
	}
	s.cache.Set(sub.OrderID, data)
}

func posBody(err error) []byte {
	var apiErr *saipos.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return nil
}
