package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"recipeclub/internal/identity"
	"recipeclub/internal/types"
)

// Webhook processing outcomes recorded in metrics.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// ProfileStore persists subscription profiles. Upsert is keyed by user_id
// and must be idempotent: invoking it twice with an identical profile leaves
// exactly one row.
type ProfileStore interface {
	Upsert(ctx context.Context, profile *types.SubscriptionProfile) error
}

// AuditLog is the append-only record of webhook delivery attempts.
type AuditLog interface {
	Insert(ctx context.Context, entry *types.WebhookLogEntry) error

	// HasSucceeded reports whether a successful attempt was already recorded
	// for the given provider event identifier. Used as the redelivery dedup
	// marker.
	HasSucceeded(ctx context.Context, eventID string) (bool, error)
}

// Metrics records webhook processing outcomes. Nil-safe via noopMetrics.
type Metrics interface {
	WebhookProcessed(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) WebhookProcessed(string) {}

// Processor runs the reconciliation pipeline for one webhook delivery:
// normalize → resolve subscriber → reconcile profile → audit log.
//
// The pipeline is deliberately NOT wrapped in a cross-step transaction: each
// step is individually idempotent, and the provider's at-least-once
// redelivery plus the audit-log dedup marker recover from partial failures
// (for example a provisioned user whose profile write failed).
type Processor struct {
	profiles  ProfileStore
	audit     AuditLog
	directory identity.Directory
	metrics   Metrics
	clock     types.Clock
	logger    *slog.Logger
}

// NewProcessor creates a Processor. Clock, metrics and logger fall back to
// defaults when nil.
func NewProcessor(
	profiles ProfileStore,
	audit AuditLog,
	directory identity.Directory,
	metrics Metrics,
	clock types.Clock,
	logger *slog.Logger,
) *Processor {
	if clock == nil {
		clock = types.RealClock{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		profiles:  profiles,
		audit:     audit,
		directory: directory,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// Process handles one authenticated webhook delivery. Every invocation
// appends exactly one audit row, success or failure; a failure while
// appending the row is logged and never masks the pipeline's own outcome.
func (p *Processor) Process(ctx context.Context, evt *types.PaymentEvent, raw types.RawPayload) error {
	entry := &types.WebhookLogEntry{
		EventType:      evt.Event,
		CustomerEmail:  evt.CustomerEmail,
		ProductName:    evt.ProductName,
		SubscriptionID: evt.SubscriptionID,
		Status:         evt.Status,
		RawPayload:     raw,
	}
	if evt.ID != "" {
		entry.EventID = &evt.ID
	}

	// Redelivery dedup: a successful audit row for this event ID means the
	// provider re-sent an event we already applied. The attempt is still
	// logged, but the pipeline is skipped.
	if evt.ID != "" {
		done, err := p.audit.HasSucceeded(ctx, evt.ID)
		if err != nil {
			// Dedup is an optimization; the pipeline itself is idempotent,
			// so a failed lookup falls through to normal processing.
			p.logger.Warn("webhook dedup lookup failed, processing anyway",
				"event_id", evt.ID,
				"error", err,
			)
		} else if done {
			p.logger.Info("skipping already-processed webhook event",
				"event_id", evt.ID,
				"event_type", evt.Event,
			)
			entry.Success = true
			p.appendAudit(ctx, entry)
			p.metrics.WebhookProcessed(OutcomeDuplicate)
			return nil
		}
	}

	if err := p.apply(ctx, evt); err != nil {
		msg := err.Error()
		entry.Success = false
		entry.ErrorMessage = &msg
		p.appendAudit(ctx, entry)
		p.metrics.WebhookProcessed(OutcomeFailed)
		return err
	}

	entry.Success = true
	p.appendAudit(ctx, entry)
	p.metrics.WebhookProcessed(OutcomeProcessed)
	return nil
}

// apply normalizes the event, resolves or provisions the subscriber, and
// reconciles the subscription profile.
func (p *Processor) apply(ctx context.Context, evt *types.PaymentEvent) error {
	status := MapStatus(evt.Status)
	plan := MapPlan(evt.ProductName)

	user, err := p.directory.FindByEmail(ctx, evt.CustomerEmail)
	if err != nil {
		var appErr *types.AppError
		if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeNotFoundUser {
			return fmt.Errorf("resolve subscriber %q: %w", evt.CustomerEmail, err)
		}

		// Unknown subscriber. Provision only for an active subscription;
		// a cancellation or dunning event for an email we never saw needs
		// no identity and no profile.
		if status != types.SubStatusActive {
			p.logger.Info("ignoring event for unknown subscriber",
				"customer_email", evt.CustomerEmail,
				"status", string(status),
			)
			return nil
		}

		tempPassword, err := identity.TempPassword()
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}

		user, err = p.directory.CreateUser(ctx, evt.CustomerEmail, tempPassword, true)
		if err != nil {
			return fmt.Errorf("provision subscriber %q: %w", evt.CustomerEmail, err)
		}

		p.logger.Info("provisioned subscriber from payment event",
			"customer_email", evt.CustomerEmail,
			"user_id", user.ID,
		)
	}

	profile := &types.SubscriptionProfile{
		UserID: user.ID,
		Email:  evt.CustomerEmail,
		Status: status,
		Plan:   plan,
	}
	if evt.SubscriptionID != "" {
		subID := evt.SubscriptionID
		profile.SubscriptionID = &subID
	}
	if status == types.SubStatusActive {
		now := p.clock.Now()
		profile.StartDate = &now
	}
	// EndDate stays nil: subscription expiry is owned by the provider's
	// billing system, not computed from plan duration here.

	if err := p.profiles.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("reconcile profile for user %s: %w", user.ID, err)
	}

	return nil
}

// appendAudit records a delivery attempt. Audit failures are logged and
// swallowed: they must never override the pipeline's primary outcome.
func (p *Processor) appendAudit(ctx context.Context, entry *types.WebhookLogEntry) {
	if err := p.audit.Insert(ctx, entry); err != nil {
		p.logger.Error("failed to append webhook audit entry",
			"event_type", entry.EventType,
			"customer_email", entry.CustomerEmail,
			"error", err,
		)
	}
}
