// Package recovery implements password recovery with short-lived email
// verification codes. Codes are six digits, valid for ten minutes, and
// single-use: validation consumes the code, and a successful password update
// clears every code issued for the email.
package recovery

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"recipeclub/internal/identity"
	"recipeclub/internal/types"
)

// CodeStore persists verification codes.
type CodeStore interface {
	Insert(ctx context.Context, code types.VerificationCode) error

	// Consume atomically deletes the most recent unexpired code matching
	// email and code, reporting whether one existed.
	Consume(ctx context.Context, email, code string, now time.Time) (bool, error)

	// DeleteByEmail removes every code issued for the email.
	DeleteByEmail(ctx context.Context, email string) (int64, error)

	// DeleteExpired removes codes whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CodeSender delivers a recovery code to the user.
type CodeSender interface {
	SendRecoveryCode(ctx context.Context, email, code string) (string, error)
}

// Metrics receives recovery counters. A nil implementation is substituted
// when metrics are disabled.
type Metrics interface {
	CodeIssued()
	CodeValidated(success bool)
}

type noopMetrics struct{}

func (noopMetrics) CodeIssued()        {}
func (noopMetrics) CodeValidated(bool) {}

// Service orchestrates the recovery flow: issue, validate, update.
type Service struct {
	codes     CodeStore
	sender    CodeSender
	directory identity.Directory
	metrics   Metrics
	clock     types.Clock
	logger    *slog.Logger
}

// NewService wires a recovery Service. sender may be nil when email delivery
// is disabled; the code is then only written to the log.
func NewService(
	codes CodeStore,
	sender CodeSender,
	directory identity.Directory,
	metrics Metrics,
	clock types.Clock,
	logger *slog.Logger,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		codes:     codes,
		sender:    sender,
		directory: directory,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// IssueCode generates a fresh code for the email, invalidates any previously
// issued codes, stores it with a ten-minute expiry, and hands it to the
// sender. The code is returned so callers in non-production environments can
// echo it in the response.
func (s *Service) IssueCode(ctx context.Context, email string) (string, error) {
	if removed, err := s.codes.DeleteByEmail(ctx, email); err != nil {
		s.logger.Warn("failed to invalidate previous recovery codes",
			slog.String("error", err.Error()),
		)
	} else if removed > 0 {
		s.logger.Info("invalidated previous recovery codes",
			slog.Int64("count", removed),
		)
	}

	code, err := generateCode()
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to generate recovery code", err)
	}

	now := s.clock.Now()
	record := types.VerificationCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(types.CodeTTL),
	}
	if err := s.codes.Insert(ctx, record); err != nil {
		return "", err
	}
	s.metrics.CodeIssued()

	if s.sender == nil {
		s.logger.Info("email delivery disabled, recovery code not sent",
			slog.String("code", code),
		)
		return code, nil
	}

	messageID, err := s.sender.SendRecoveryCode(ctx, email, code)
	if err != nil {
		return "", err
	}
	s.logger.Info("recovery code sent",
		slog.String("message_id", messageID),
	)
	return code, nil
}

// ValidateCode consumes the latest unexpired code for the email. Expired,
// unknown, and already-consumed codes are indistinguishable to the caller.
func (s *Service) ValidateCode(ctx context.Context, email, code string) error {
	ok, err := s.codes.Consume(ctx, email, code, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.CodeValidated(false)
		return types.NewAppError(types.ErrCodeRecoveryCodeInvalid,
			"Código inválido ou expirado", nil)
	}
	s.metrics.CodeValidated(true)
	return nil
}

// UpdatePassword sets a new password for the account behind the email and
// clears all of its recovery codes. Callers must have validated a code first;
// the update itself does not re-check one.
func (s *Service) UpdatePassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < types.MinPasswordLength {
		return types.NewAppErrorWithDetails(types.ErrCodeValidationPasswordTooShort,
			fmt.Sprintf("A senha deve ter pelo menos %d caracteres", types.MinPasswordLength),
			nil,
			map[string]any{"newPassword": "min"},
		)
	}

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.directory.UpdatePassword(ctx, user.ID, newPassword); err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"Erro ao atualizar senha", err)
	}

	if _, err := s.codes.DeleteByEmail(ctx, email); err != nil {
		s.logger.Warn("failed to clear recovery codes after password update",
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("password updated",
		slog.String("user_id", user.ID),
	)
	return nil
}

// PurgeExpired removes expired codes. Run periodically by the reaper.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.codes.DeleteExpired(ctx, s.clock.Now())
}

const codeDigits = 6

var codeMax = big.NewInt(1_000_000)

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
