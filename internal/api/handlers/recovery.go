package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recipeclub/internal/core"
)

// RecoveryService drives the password recovery flow.
type RecoveryService interface {
	IssueCode(ctx context.Context, email string) (string, error)
	ValidateCode(ctx context.Context, email, code string) error
	UpdatePassword(ctx context.Context, email, newPassword string) error
}

// RecoveryHandler exposes the three-step password recovery endpoints:
// request a code, verify it, set the new password.
type RecoveryHandler struct {
	service   RecoveryService
	validator *core.Validator
	echoCode  bool
	logger    *slog.Logger
}

// NewRecoveryHandler creates a RecoveryHandler. When echoCode is true the
// issued code is included in the response body, which lets frontend work
// proceed without a mailbox. Never enable it in production.
func NewRecoveryHandler(
	service RecoveryService,
	validator *core.Validator,
	echoCode bool,
	logger *slog.Logger,
) *RecoveryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryHandler{
		service:   service,
		validator: validator,
		echoCode:  echoCode,
		logger:    logger,
	}
}

// RegisterRoutes mounts the recovery endpoints.
func (h *RecoveryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth/recovery", func(r chi.Router) {
		r.Post("/code", h.IssueCode)
		r.Post("/verify", h.VerifyCode)
		r.Post("/password", h.UpdatePassword)
	})
}

type issueCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type issueCodeResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// IssueCode handles POST /auth/recovery/code.
func (h *RecoveryHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	var req issueCodeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	code, err := h.service.IssueCode(r.Context(), req.Email)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := issueCodeResponse{Message: "Código de verificação enviado com sucesso"}
	if h.echoCode {
		resp.Code = code
	}
	core.JSON(w, r, http.StatusOK, resp)
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type verifyCodeResponse struct {
	Message string `json:"message"`
	Valid   bool   `json:"valid"`
}

// VerifyCode handles POST /auth/recovery/verify. The code is consumed on
// success; a second verification of the same code fails.
func (h *RecoveryHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.service.ValidateCode(r.Context(), req.Email, req.Code); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, verifyCodeResponse{
		Message: "Código verificado com sucesso",
		Valid:   true,
	})
}

type updatePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type updatePasswordResponse struct {
	Message string `json:"message"`
}

// UpdatePassword handles POST /auth/recovery/password.
func (h *RecoveryHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), req.Email, req.NewPassword); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, updatePasswordResponse{
		Message: "Senha atualizada com sucesso",
	})
}
