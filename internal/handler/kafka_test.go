package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/saipos"
	"github.com/brmonteiro/saipos-bridge/internal/service"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubmitter struct {
	res service.Result
	err error
}

func (s *stubSubmitter) ProcessOrder(ctx context.Context, order shopify.Order) (service.Result, error) {
	return s.res, s.err
}

func newTestKafkaHandler(submitter OrderSubmitter) *kafkaHandler {
	return &kafkaHandler{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		submitter: submitter,
	}
}

func TestKafkaHandler_HandleOrder(t *testing.T) {
	ctx := context.Background()
	msg := kafka.Message{Value: []byte(`{"id":1001}`)}

	t.Run("delivered order counts as delivered", func(t *testing.T) {
		h := newTestKafkaHandler(&stubSubmitter{res: service.Result{OrderID: "shopify_1001"}})

		before := testutil.ToFloat64(submissionsDelivered)
		require.NoError(t, h.handleOrder(ctx, msg))
		assert.Equal(t, before+1, testutil.ToFloat64(submissionsDelivered))
	})

	t.Run("duplicate order counts as duplicate", func(t *testing.T) {
		h := newTestKafkaHandler(&stubSubmitter{res: service.Result{OrderID: "shopify_1001", Duplicate: true}})

		delivered := testutil.ToFloat64(submissionsDelivered)
		duplicates := testutil.ToFloat64(submissionsDuplicate)
		require.NoError(t, h.handleOrder(ctx, msg))
		assert.Equal(t, delivered, testutil.ToFloat64(submissionsDelivered))
		assert.Equal(t, duplicates+1, testutil.ToFloat64(submissionsDuplicate))
	})

	t.Run("pos failure counts as failed", func(t *testing.T) {
		posErr := &saipos.APIError{Status: 500, Body: []byte("pos exploded")}
		h := newTestKafkaHandler(&stubSubmitter{err: posErr})

		before := testutil.ToFloat64(submissionsFailed)
		assert.Error(t, h.handleOrder(ctx, msg))
		assert.Equal(t, before+1, testutil.ToFloat64(submissionsFailed))
	})

	t.Run("unmappable order is not a submission failure", func(t *testing.T) {
		h := newTestKafkaHandler(&stubSubmitter{err: &entities.ValidationError{Messages: []string{"store code is required"}}})

		before := testutil.ToFloat64(submissionsFailed)
		assert.Error(t, h.handleOrder(ctx, msg))
		assert.Equal(t, before, testutil.ToFloat64(submissionsFailed))
	})

	t.Run("malformed message is not a submission failure", func(t *testing.T) {
		h := newTestKafkaHandler(&stubSubmitter{})

		before := testutil.ToFloat64(submissionsFailed)
		assert.Error(t, h.handleOrder(ctx, kafka.Message{Value: []byte(`{not json`)}))
		assert.Equal(t, before, testutil.ToFloat64(submissionsFailed))
	})
}

func TestUnrecoverable(t *testing.T) {
	assert.True(t, unrecoverable(entities.ErrEmptyPayload))
	assert.True(t, unrecoverable(&entities.ValidationError{}))
	assert.False(t, unrecoverable(errors.New("connection refused")))
	assert.False(t, unrecoverable(&saipos.APIError{Status: 500}))
}
