package types

import "time"

// User is the identity-provider view of an account. The provider owns the
// user lifecycle (credentials, sessions, confirmation); this service only
// resolves and provisions users through the provider's admin API.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// SubscriptionProfile is the locally stored entitlement for a user.
// At most one profile exists per user_id; reconciliation merges the
// provider-reported state into the existing row.
type SubscriptionProfile struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	Email          string             `json:"email"`
	Status         SubscriptionStatus `json:"subscription_status"`
	Plan           PlanType           `json:"plan_type"`
	SubscriptionID *string            `json:"subscription_id,omitempty"`
	StartDate      *time.Time         `json:"subscription_start_date,omitempty"`
	EndDate        *time.Time         `json:"subscription_end_date,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// PaymentEvent is the provider webhook payload. The provider does not
// guarantee an event identifier on every delivery, so ID may be empty;
// when present it is used as the redelivery dedup key.
type PaymentEvent struct {
	ID             string `json:"id,omitempty"`
	Event          string `json:"event"`
	CustomerEmail  string `json:"customer_email"`
	ProductName    string `json:"product_name"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
}

// WebhookLogEntry is one row of the append-only payment webhook audit log.
// Rows are never mutated or deleted; every delivery attempt produces
// exactly one row regardless of outcome.
type WebhookLogEntry struct {
	ID             string     `json:"id"`
	EventID        *string    `json:"event_id,omitempty"`
	EventType      string     `json:"event_type"`
	CustomerEmail  string     `json:"customer_email"`
	ProductName    string     `json:"product_name"`
	SubscriptionID string     `json:"subscription_id"`
	Status         string     `json:"status"`
	RawPayload     RawPayload `json:"raw_payload"`
	Success        bool       `json:"success"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// VerificationCode is a time-boxed one-time recovery code. A code is
// consumed by deleting its row on first successful validation.
type VerificationCode struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeTTL is the validity window of a verification code.
const CodeTTL = 10 * time.Minute

// MinPasswordLength is the minimum accepted password length on update.
const MinPasswordLength = 6
