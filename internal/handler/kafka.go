package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/config"
	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/service"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"

	"github.com/segmentio/kafka-go"
)

type OrderSubmitter interface {
	ProcessOrder(ctx context.Context, order shopify.Order) (service.Result, error)
}

type kafkaHandler struct {
	dlq       *kafka.Writer
	reader    *kafka.Reader
	logger    *slog.Logger
	submitter OrderSubmitter
}

func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, submitter OrderSubmitter) *kafkaHandler {
	return &kafkaHandler{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		submitter: submitter,
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			} else {
				h.logger.Error("failed to fetch message", slog.Any("error", err))
				continue
			}
		}

		if err := h.handleOrder(ctx, m); err != nil {
			// failed submissions stay in the journal; the DLQ copy is for replay
			if err := h.WriteToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
			ordersDLQ.Inc()
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			commitErrors.Inc()
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *kafkaHandler) handleOrder(ctx context.Context, m kafka.Message) error {
	start := time.Now()
	defer func() {
		orderProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	var order shopify.Order
	if err := json.Unmarshal(m.Value, &order); err != nil {
		h.logger.Error("failed to unmarshal order", slog.Any("error", err))
		return fmt.Errorf("failed to unmarshal order: %w", err)
	}

	res, err := h.submitter.ProcessOrder(ctx, order)
	if err != nil {
		if unrecoverable(err) {
			h.logger.Error("order cannot be mapped", slog.Any("error", err))
		} else {
			submissionsFailed.Inc()
			h.logger.Error("pos submission failed", slog.Any("error", err))
		}
		return err
	}

	if res.Duplicate {
		submissionsDuplicate.Inc()
		h.logger.Debug("duplicate order skipped", slog.String("order_id", res.OrderID))
		return nil
	}

	submissionsDelivered.Inc()
	return nil
}

func (h *kafkaHandler) WriteToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}

// unrecoverable separates orders that will never map from transient POS
// failures; both currently land in the DLQ, the distinction is logged.
func unrecoverable(err error) bool {
	var ve *entities.ValidationError
	return errors.Is(err, entities.ErrEmptyPayload) || errors.As(err, &ve)
}
