// Package identity integrates with the external identity provider that owns
// user accounts, credentials, and sessions. This service never stores
// passwords; it only resolves, provisions, and updates users through the
// provider's privileged admin API.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"recipeclub/internal/types"
)

// Directory is the subset of the identity provider's admin API used by this
// service. Implementations must return an AppError with code
// ErrCodeNotFoundUser when no account exists for an email.
type Directory interface {
	// FindByEmail resolves a user by exact email using the provider's
	// indexed lookup.
	FindByEmail(ctx context.Context, email string) (*types.User, error)

	// CreateUser provisions a new account. When confirmed is true the email
	// is marked pre-confirmed, skipping the provider's confirmation flow.
	CreateUser(ctx context.Context, email, password string, confirmed bool) (*types.User, error)

	// UpdatePassword sets a new credential through the privileged update
	// operation.
	UpdatePassword(ctx context.Context, userID, password string) error
}

// tempPasswordBytes is the entropy of a generated temporary password.
const tempPasswordBytes = 12

// TempPassword generates a random temporary password for subscribers
// provisioned from a payment event. The subscriber is expected to go through
// password recovery before their first login.
func TempPassword() (string, error) {
	b := make([]byte, tempPasswordBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
