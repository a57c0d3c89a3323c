package db

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"recipeclub/internal/types"
)

// WebhookLogRepo is the append-only audit log of payment webhook deliveries.
// Successful rows double as the duplicate-delivery marker for events that
// carry a provider event id.
type WebhookLogRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewWebhookLogRepo creates a repo backed by the given database connection.
func NewWebhookLogRepo(db DBTX, logger *slog.Logger) *WebhookLogRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookLogRepo{db: db, logger: logger}
}

// Insert appends one delivery record. Rows are never updated or deleted.
func (r *WebhookLogRepo) Insert(ctx context.Context, entry *types.WebhookLogEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO payment_webhook_logs
		     (id, event_id, event_type, customer_email, product_name,
		      subscription_id, status, raw_payload, success, error_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
		id,
		entry.EventID,
		entry.EventType,
		entry.CustomerEmail,
		entry.ProductName,
		entry.SubscriptionID,
		entry.Status,
		entry.RawPayload,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert webhook log", err)
	}
	return nil
}

// HasSucceeded reports whether a successful delivery with this event id has
// already been recorded.
func (r *WebhookLogRepo) HasSucceeded(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM payment_webhook_logs
		     WHERE event_id = $1 AND success
		 )`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check webhook log", err)
	}
	return exists, nil
}
