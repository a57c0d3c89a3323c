package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"recipeclub/internal/config"
	"recipeclub/internal/types"
)

// MailerConfig holds the configuration for creating a Mailer.
type MailerConfig struct {
	APIKey      types.SecretString
	BaseURL     string
	FromAddress string
	FromName    string
	Logger      *slog.Logger
}

// MailerConfigFromApp builds a MailerConfig from the application config.
func MailerConfigFromApp(cfg config.EmailConfig, logger *slog.Logger) MailerConfig {
	return MailerConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
		Logger:      logger,
	}
}

// Mailer delivers transactional email through the email provider's HTTP API
// via BaseClient, inheriting the platform's resilience behavior (circuit
// breaker, retries, error mapping). The only template this service sends is
// the password-recovery code.
type Mailer struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	from    string
	logger  *slog.Logger
}

// NewMailer creates a Mailer with its own BaseClient.
func NewMailer(httpClient *http.Client, cfg MailerConfig) *Mailer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"email-provider",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"recipeclub/1.0",
	)

	return NewMailerWithBase(base, cfg)
}

// NewMailerWithBase creates a Mailer with a pre-configured BaseClient.
// Useful in tests to control retry and breaker behavior.
func NewMailerWithBase(base *BaseClient, cfg MailerConfig) *Mailer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		from:    fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		logger:  logger,
	}
}

// sendEmailRequest is the provider's send payload.
type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// sendEmailResponse is the provider's acknowledgment.
type sendEmailResponse struct {
	ID string `json:"id"`
}

// SendRecoveryCode emails a one-time recovery code to the given address and
// returns the provider message ID.
func (m *Mailer) SendRecoveryCode(ctx context.Context, email, code string) (string, error) {
	payload := sendEmailRequest{
		From:    m.from,
		To:      []string{email},
		Subject: "Seu código de recuperação de senha",
		HTML: fmt.Sprintf(
			"<p>Use o código abaixo para redefinir sua senha. Ele expira em 10 minutos.</p><h2>%s</h2>",
			code,
		),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal email payload",
			err,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to build email request",
			err,
		)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey.Unmask())
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		m.logger.Warn("email provider rejected send",
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return "", types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("email provider returned %d", resp.StatusCode),
			nil,
		)
	}

	var ack sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		// The send succeeded; a malformed ack only costs us the message ID.
		m.logger.Warn("failed to decode email provider response", "error", err)
		return "", nil
	}

	return ack.ID, nil
}
