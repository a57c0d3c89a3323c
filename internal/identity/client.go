package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipeclub/internal/config"
	"recipeclub/internal/external"
	"recipeclub/internal/types"
)

// Client talks to the identity provider's admin API. All requests carry the
// privileged service key; the key never flows into logs.
type Client struct {
	base       *external.BaseClient
	baseURL    string
	serviceKey string
	logger     *slog.Logger
}

var _ Directory = (*Client)(nil)

// NewClient builds a Client from the identity configuration. The underlying
// transport gets its own circuit breaker so identity outages do not interfere
// with other providers.
func NewClient(cfg config.IdentityConfig, logger *slog.Logger) *Client {
	policy := external.DefaultRetryPolicy()
	policy.MaxRetries = 2

	base := external.NewBaseClient(
		&http.Client{Timeout: cfg.Timeout},
		"identity-provider",
		policy,
		"recipeclub/1.0",
	)
	return NewClientWithBase(base, cfg, logger)
}

// NewClientWithBase builds a Client on top of an existing BaseClient.
// Intended for tests that inject a stub transport.
func NewClientWithBase(base *external.BaseClient, cfg config.IdentityConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:       base,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey.Unmask(),
		logger:     logger,
	}
}

// adminUser is the provider's wire representation of a user.
type adminUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (u adminUser) toUser() *types.User {
	return &types.User{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		CreatedAt:      u.CreatedAt,
	}
}

type listUsersResponse struct {
	Users []adminUser `json:"users"`
}

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type updateUserRequest struct {
	Password string `json:"password"`
}

// FindByEmail resolves a user through the provider's filtered admin listing.
// Email matching is exact but case-insensitive on the provider side.
func (c *Client) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	endpoint := fmt.Sprintf("%s/admin/users?email=%s", c.baseURL, url.QueryEscape(email))
	resp, err := c.doJSON(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.unexpectedStatus("list users", resp)
	}

	var list listUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamIdentity,
			"identity provider returned a malformed user listing", err)
	}

	for _, u := range list.Users {
		if strings.EqualFold(u.Email, email) {
			return u.toUser(), nil
		}
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundUser, "no account exists for this email", nil)
}

// CreateUser provisions an account through the admin API.
func (c *Client) CreateUser(ctx context.Context, email, password string, confirmed bool) (*types.User, error) {
	body := createUserRequest{Email: email, Password: password, EmailConfirm: confirmed}
	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/admin/users", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.unexpectedStatus("create user", resp)
	}

	var created adminUser
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamIdentity,
			"identity provider returned a malformed user", err)
	}

	c.logger.Info("provisioned user via identity provider",
		slog.String("user_id", created.ID),
	)
	return created.toUser(), nil
}

// UpdatePassword sets a new credential for an existing user.
func (c *Client) UpdatePassword(ctx context.Context, userID, password string) error {
	endpoint := fmt.Sprintf("%s/admin/users/%s", c.baseURL, url.PathEscape(userID))
	resp, err := c.doJSON(ctx, http.MethodPut, endpoint, updateUserRequest{Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.unexpectedStatus("update password", resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
				"failed to encode identity request", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to build identity request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.base.Do(req)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamIdentity,
			"identity provider request failed", err)
	}
	return resp, nil
}

func (c *Client) unexpectedStatus(op string, resp *http.Response) *types.AppError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	c.logger.Error("identity provider rejected request",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(snippet)),
	)
	return types.NewAppError(types.ErrCodeUpstreamIdentity,
		fmt.Sprintf("identity provider %s failed with status %d", op, resp.StatusCode), nil)
}
