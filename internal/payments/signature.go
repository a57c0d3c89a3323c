// Package payments implements the payment-provider integration: webhook
// signature verification, event normalization, and the reconciliation
// pipeline that keeps subscription profiles in sync with provider state.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"recipeclub/internal/types"
)

// SignatureHeader carries the provider's hex-encoded HMAC-SHA256 digest of
// the raw request body.
const SignatureHeader = "X-Provider-Signature"

// SignatureVerifier authenticates inbound webhook deliveries using a shared
// secret. The digest is computed over the exact wire bytes; any
// re-serialization of the body invalidates the signature.
//
// When no secret is configured the verifier accepts every delivery
// (fail-open). Production configuration rejects an empty secret at startup,
// so this path only exists for local and pre-production environments, and it
// is announced loudly at construction so operators cannot miss it.
type SignatureVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewSignatureVerifier creates a verifier for the given shared secret.
func NewSignatureVerifier(secret types.SecretString, logger *slog.Logger) *SignatureVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	raw := secret.Unmask()
	if raw == "" {
		logger.Warn("payment webhook secret is not configured: signature verification is DISABLED and every delivery will be trusted")
	}
	return &SignatureVerifier{
		secret: []byte(raw),
		logger: logger,
	}
}

// Enabled reports whether a shared secret is configured.
func (v *SignatureVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify checks the hex-encoded HMAC-SHA256 signature against the raw body.
// Returns nil when the signature matches, or when verification is disabled.
// The digest comparison is constant-time.
func (v *SignatureVerifier) Verify(body []byte, signature string) error {
	if !v.Enabled() {
		return nil
	}

	if signature == "" {
		return types.NewAppError(
			types.ErrCodeAuthSignatureMissing,
			"missing webhook signature header",
			nil,
		)
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeAuthSignatureInvalid,
			"webhook signature is not valid hex",
			err,
		)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return types.NewAppError(
			types.ErrCodeAuthSignatureInvalid,
			"webhook signature verification failed",
			nil,
		)
	}

	return nil
}
