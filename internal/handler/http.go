package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/internal/service"
	"github.com/brmonteiro/saipos-bridge/internal/shipping"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"
	"github.com/brmonteiro/saipos-bridge/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderProcessor interface {
	ProcessOrder(ctx context.Context, order shopify.Order) (service.Result, error)
	Resubmit(ctx context.Context, orderID string) (service.Result, error)
	GetSubmission(ctx context.Context, orderID string) (entities.Submission, error)
	ListSubmissions(ctx context.Context, status entities.SubmissionStatus, limit int) ([]entities.Submission, error)
	ListAttempts(ctx context.Context, orderID string) ([]entities.Attempt, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderProcessor
	resolver shipping.Resolver
}

func NewHTTPHandler(logger *slog.Logger, svc OrderProcessor, resolver shipping.Resolver) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
		resolver: resolver,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Post("/webhook/shopify-orders", h.HandleOrder)
	r.Get("/webhook/status", h.Status)

	r.Get("/shipping/quote", h.ShippingQuote)

	r.Route("/submissions", func(r chi.Router) {
		r.Get("/", h.ListSubmissions)
		r.Get("/{order_id}", h.GetSubmission)
		r.Post("/{order_id}/retry", h.RetrySubmission)
	})
}

// HandleOrder recebe um pedido da plataforma e o encaminha ao POS.
// @Summary      Receive a platform order
// @Description  Maps, validates, journals and forwards the order to the POS
// @Tags         webhook
// @Accept       json
// @Success      200  {object}  WebhookResponse
// @Failure      422  {object}  WebhookResponse "Mapping or validation failure"
// @Failure      502  {object}  WebhookResponse "POS submission failure"
// @Router       /webhook/shopify-orders [post]
func (h *HTTPHandler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var order shopify.Order
	if err := utils.DecodeBody(r, &order); err != nil {
		webhookFailures.Inc()
		utils.WriteJSON(w, WebhookResponse{Success: false, Error: "invalid order payload"}, http.StatusUnprocessableEntity)
		return
	}

	res, err := h.svc.ProcessOrder(ctx, order)

	var ve *entities.ValidationError
	switch {
	case errors.Is(err, entities.ErrEmptyPayload):
		webhookFailures.Inc()
		utils.WriteJSON(w, WebhookResponse{Success: false, Error: entities.ErrEmptyPayload.Error()}, http.StatusUnprocessableEntity)
		return
	case errors.As(err, &ve):
		webhookFailures.Inc()
		utils.WriteJSON(w, WebhookResponse{Success: false, Error: joinMessages(ve.Messages)}, http.StatusUnprocessableEntity)
		return
	case err != nil:
		submissionsFailed.Inc()
		h.logger.ErrorContext(ctx, "failed to process order", slog.Any("error", err))
		utils.WriteJSON(w, WebhookResponse{Success: false, Error: "order processing failed"}, http.StatusBadGateway)
		return
	}

	if res.Duplicate {
		submissionsDuplicate.Inc()
	} else {
		submissionsDelivered.Inc()
	}

	utils.WriteJSON(w, WebhookResponse{
		Success:   true,
		OrderID:   res.OrderID,
		Timestamp: res.Timestamp.Format(time.RFC3339),
		Duplicate: res.Duplicate,
	}, http.StatusOK)
}

// Status responde ao health check do webhook.
// @Summary      Webhook health check
// @Tags         webhook
// @Success      200  {object}  StatusResponse
// @Router       /webhook/status [get]
func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// ShippingQuote resolves a CEP to its delivery zone and variant.
// @Summary      Resolve delivery zone for a postal code
// @Tags         shipping
// @Param        cep   query     string  true  "Postal code, formatted or digits-only"
// @Success      200  {object}  QuoteResponse
// @Failure      400  {object}  utils.ErrorResponse "Postal code is not 8 digits"
// @Failure      422  {object}  utils.ErrorResponse "Out of the delivery area"
// @Router       /shipping/quote [get]
func (h *HTTPHandler) ShippingQuote(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("cep")

	zone, err := h.resolver.Resolve(raw)
	if errors.Is(err, entities.ErrInvalidPostalCode) {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, entities.ErrOutOfServiceArea) {
		utils.WriteError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to resolve zone", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	periods := entities.DeliveryPeriods()
	names := make([]string, 0, len(periods))
	for _, p := range periods {
		names = append(names, string(p))
	}

	utils.WriteJSON(w, QuoteResponse{
		CEP:               shipping.SanitizeCEP(raw),
		Zone:              zone.Label,
		ShippingVariantID: zone.ShippingVariantID,
		DeliveryPeriods:   names,
	}, http.StatusOK)
}

// GetSubmission returns one journal row with its attempt history.
// @Summary      Get a submission by order id
// @Tags         submissions
// @Param        order_id  path  string  true  "POS order id"
// @Success      200  {object}  Submission
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /submissions/{order_id} [get]
func (h *HTTPHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	sub, err := h.svc.GetSubmission(ctx, orderID)
	if errors.Is(err, entities.ErrSubmissionNotFound) {
		utils.WriteError(w, "submission not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get submission", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res := SubmissionEntityToJSON(sub)

	attempts, err := h.svc.ListAttempts(ctx, orderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list attempts", slog.Any("error", err), slog.String("order_id", orderID))
	}
	for _, a := range attempts {
		res.Attempts = append(res.Attempts, AttemptEntityToJSON(a))
	}

	utils.WriteJSON(w, res, http.StatusOK)
}

// ListSubmissions lists journal rows by status, newest first.
// @Summary      List submissions
// @Tags         submissions
// @Param        status  query  string  false  "pending | delivered | failed"  default(failed)
// @Param        limit   query  int     false  "Max rows"  default(50)
// @Success      200  {array}  Submission
// @Router       /submissions [get]
func (h *HTTPHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(entities.StatusFailed)
	}
	if err := h.validate.Var(status, "oneof=pending delivered failed"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.WriteError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	subs, err := h.svc.ListSubmissions(ctx, entities.SubmissionStatus(status), limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list submissions", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res := make([]Submission, 0, len(subs))
	for _, sub := range subs {
		res = append(res, SubmissionEntityToJSON(sub))
	}
	utils.WriteJSON(w, res, http.StatusOK)
}

// RetrySubmission re-sends a journaled payload to the POS.
// @Summary      Retry a failed submission
// @Tags         submissions
// @Param        order_id  path  string  true  "POS order id"
// @Success      200  {object}  WebhookResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Failure      409  {object}  utils.ErrorResponse "Order already delivered"
// @Failure      502  {object}  WebhookResponse "POS submission failure"
// @Router       /submissions/{order_id}/retry [post]
func (h *HTTPHandler) RetrySubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	res, err := h.svc.Resubmit(ctx, orderID)

	switch {
	case errors.Is(err, entities.ErrSubmissionNotFound):
		utils.WriteError(w, "submission not found", http.StatusNotFound)
		return
	case errors.Is(err, entities.ErrAlreadyDelivered):
		utils.WriteError(w, entities.ErrAlreadyDelivered.Error(), http.StatusConflict)
		return
	case err != nil:
		submissionsFailed.Inc()
		h.logger.ErrorContext(ctx, "retry failed", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteJSON(w, WebhookResponse{Success: false, Error: "order processing failed"}, http.StatusBadGateway)
		return
	}

	submissionsDelivered.Inc()
	utils.WriteJSON(w, WebhookResponse{
		Success:   true,
		OrderID:   res.OrderID,
		Timestamp: res.Timestamp.Format(time.RFC3339),
	}, http.StatusOK)
}

func joinMessages(messages []string) string {
	if len(messages) == 0 {
		return "validation failed"
	}
	out := messages[0]
	for _, m := range messages[1:] {
		out += "; " + m
	}
	return out
}
