package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipeclub/internal/types"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignatureVerifier_ValidSignature(t *testing.T) {
	v := NewSignatureVerifier(types.SecretString("whsec_test"), nil)
	body := []byte(`{"event":"subscription_created"}`)

	err := v.Verify(body, sign("whsec_test", body))
	require.NoError(t, err)
}

func TestSignatureVerifier_WrongSecret(t *testing.T) {
	v := NewSignatureVerifier(types.SecretString("whsec_test"), nil)
	body := []byte(`{"event":"subscription_created"}`)

	err := v.Verify(body, sign("whsec_other", body))
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthSignatureInvalid, appErr.Code)
}

func TestSignatureVerifier_TamperedBody(t *testing.T) {
	v := NewSignatureVerifier(types.SecretString("whsec_test"), nil)
	body := []byte(`{"event":"subscription_created"}`)
	sig := sign("whsec_test", body)

	err := v.Verify([]byte(`{"event":"subscription_canceled"}`), sig)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthSignatureInvalid, appErr.Code)
}

func TestSignatureVerifier_MissingHeader(t *testing.T) {
	v := NewSignatureVerifier(types.SecretString("whsec_test"), nil)

	err := v.Verify([]byte(`{}`), "")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthSignatureMissing, appErr.Code)
}

func TestSignatureVerifier_NotHex(t *testing.T) {
	v := NewSignatureVerifier(types.SecretString("whsec_test"), nil)

	err := v.Verify([]byte(`{}`), "not-a-hex-digest")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthSignatureInvalid, appErr.Code)
}

func TestSignatureVerifier_DisabledAcceptsEverything(t *testing.T) {
	v := NewSignatureVerifier(types.SecretString(""), nil)

	assert.False(t, v.Enabled())
	require.NoError(t, v.Verify([]byte(`{}`), ""))
	require.NoError(t, v.Verify([]byte(`{}`), "deadbeef"))
}
