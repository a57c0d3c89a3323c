// Package handlers contains the HTTP handler implementations for the API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recipeclub/internal/core"
	"recipeclub/internal/payments"
	"recipeclub/internal/types"
)

// maxWebhookBodySize caps the payment webhook payload at 64 KB. Provider
// payloads are small; the limit protects against abuse.
const maxWebhookBodySize = 64 * 1024

// errCodeValidationPayloadTooLarge is the error code for a webhook body
// exceeding maxWebhookBodySize. Local to the webhook handler.
const errCodeValidationPayloadTooLarge types.ErrorCode = "validation_payload_too_large"

// WebhookProcessor runs the subscription sync pipeline for one delivery.
type WebhookProcessor interface {
	Process(ctx context.Context, evt *types.PaymentEvent, raw types.RawPayload) error
}

// PaymentWebhookHandler handles inbound deliveries from the payment provider.
// It is unauthenticated (no session) but verifies the provider's HMAC
// signature header.
type PaymentWebhookHandler struct {
	verifier  *payments.SignatureVerifier
	processor WebhookProcessor
	logger    *slog.Logger
}

// NewPaymentWebhookHandler creates a PaymentWebhookHandler.
func NewPaymentWebhookHandler(
	verifier *payments.SignatureVerifier,
	processor WebhookProcessor,
	logger *slog.Logger,
) *PaymentWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentWebhookHandler{
		verifier:  verifier,
		processor: processor,
		logger:    logger,
	}
}

// RegisterRoutes mounts the webhook endpoint. Kept separate from the
// recovery routes because webhook deliveries carry no user identity.
func (h *PaymentWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/payment", h.Handle)
}

type webhookResponse struct {
	Message   string `json:"message"`
	Processed bool   `json:"processed"`
}

// Handle processes one webhook delivery:
//
//  1. Reads the raw body with a size limit.
//  2. Verifies the provider signature over the exact raw bytes.
//  3. Parses the event payload.
//  4. Runs the sync pipeline.
//  5. Responds 200 on success, 401 on bad signature, 500 otherwise.
func (h *PaymentWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to read webhook body",
			"error", err,
		)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			core.Error(w, r, types.NewAppError(
				errCodeValidationPayloadTooLarge,
				"request body must not exceed 64KB",
				err,
			))
			return
		}
		core.Error(w, r, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"Erro interno do servidor",
			err,
		))
		return
	}

	if err := h.verifier.Verify(payload, r.Header.Get(payments.SignatureHeader)); err != nil {
		h.logger.WarnContext(r.Context(), "webhook signature verification failed",
			"error", err,
		)
		core.Error(w, r, err)
		return
	}

	var raw types.RawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to parse webhook payload",
			"error", err,
		)
		core.Error(w, r, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"Erro interno do servidor",
			err,
		))
		return
	}

	var event types.PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// Unreachable in practice once the raw decode succeeded; kept so a
		// type mismatch on a known field is not silently dropped.
		core.Error(w, r, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"Erro interno do servidor",
			err,
		))
		return
	}

	h.logger.InfoContext(r.Context(), "processing payment webhook",
		"event_id", event.ID,
		"event_type", event.Event,
	)

	if err := h.processor.Process(r.Context(), &event, raw); err != nil {
		h.logger.ErrorContext(r.Context(), "webhook processing failed",
			"event_id", event.ID,
			"event_type", event.Event,
			"error", err,
		)
		core.Error(w, r, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"Erro interno do servidor",
			err,
		))
		return
	}

	core.JSON(w, r, http.StatusOK, webhookResponse{
		Message:   "Webhook processado com sucesso",
		Processed: true,
	})
}
