package db

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"recipeclub/internal/types"
)

// SubscriptionProfileRepo manages the local mirror of each user's
// subscription state. One row per user; payment events overwrite it.
type SubscriptionProfileRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewSubscriptionProfileRepo creates a repo backed by the given database
// connection (pool or transaction).
func NewSubscriptionProfileRepo(db DBTX, logger *slog.Logger) *SubscriptionProfileRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionProfileRepo{db: db, logger: logger}
}

// Upsert inserts the profile or, when a row for the user already exists,
// overwrites its subscription fields. created_at survives the overwrite.
func (r *SubscriptionProfileRepo) Upsert(ctx context.Context, profile *types.SubscriptionProfile) error {
	id := profile.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO subscription_profiles
		     (id, user_id, email, subscription_status, plan_type,
		      subscription_id, start_date, end_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		     email = EXCLUDED.email,
		     subscription_status = EXCLUDED.subscription_status,
		     plan_type = EXCLUDED.plan_type,
		     subscription_id = EXCLUDED.subscription_id,
		     start_date = EXCLUDED.start_date,
		     end_date = EXCLUDED.end_date,
		     updated_at = NOW()`,
		id,
		profile.UserID,
		profile.Email,
		profile.Status,
		profile.Plan,
		profile.SubscriptionID,
		profile.StartDate,
		profile.EndDate,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert subscription profile", err)
	}
	return nil
}
