package db

import (
	"context"
	"log/slog"
	"time"

	"recipeclub/internal/types"
)

// VerificationCodeRepo stores password recovery codes.
type VerificationCodeRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewVerificationCodeRepo creates a repo backed by the given database
// connection.
func NewVerificationCodeRepo(db DBTX, logger *slog.Logger) *VerificationCodeRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationCodeRepo{db: db, logger: logger}
}

// Insert stores a freshly issued code.
func (r *VerificationCodeRepo) Insert(ctx context.Context, code types.VerificationCode) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO verification_codes (id, email, code, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		code.ID,
		code.Email,
		code.Code,
		code.CreatedAt,
		code.ExpiresAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert verification code", err)
	}
	return nil
}

// Consume deletes the most recent unexpired code matching email and code in
// a single statement, so two concurrent validations of the same code cannot
// both succeed.
func (r *VerificationCodeRepo) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM verification_codes
		 WHERE id = (
		     SELECT id FROM verification_codes
		     WHERE email = $1 AND code = $2 AND expires_at > $3
		     ORDER BY created_at DESC
		     LIMIT 1
		 )`,
		email,
		code,
		now,
	)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to consume verification code", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByEmail removes every code issued for the email.
func (r *VerificationCodeRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM verification_codes WHERE email = $1`,
		email,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete verification codes", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes codes whose expiry is at or before now.
func (r *VerificationCodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM verification_codes WHERE expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete expired verification codes", err)
	}
	return tag.RowsAffected(), nil
}
