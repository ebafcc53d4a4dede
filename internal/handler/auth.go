package handler

import (
	"net/http"
	"time"

	"automind-api/internal/middleware"
	"automind-api/internal/model"
	"automind-api/internal/service"
	"automind-api/pkg/apierror"
	"automind-api/pkg/response"

	"go.uber.org/zap"
)

// AuthHandler handles signup, login and session lifecycle requests.
type AuthHandler struct {
	accounts *service.AccountService
	sessions *service.SessionService
	log      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts *service.AccountService, sessions *service.SessionService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		log:      logger.Named("auth"),
	}
}

// LoginRequest represents the request body for POST /sessions.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned whenever a token is issued.
type SessionResponse struct {
	Account   *model.Account `json:"account"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	ExpiresIn int            `json:"expires_in"`
}

// Signup handles POST /api/v1/accounts. A new account is logged in at once.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.NewAccount
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}

	resp, err := h.issue(r, account)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, resp)
}

// Login handles POST /api/v1/sessions
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	resp, err := h.issue(r, account)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, resp)
}

// Logout handles DELETE /api/v1/sessions
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RevokeToken(r.Context(), middleware.TokenFromContext(r.Context())); err != nil {
		h.log.Error("failed to revoke token", zap.Error(err))
		response.Error(w, apierror.InternalError("failed to revoke token"))
		return
	}
	response.OK(w, map[string]string{"status": "revoked"})
}

// Refresh handles POST /api/v1/sessions/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	data, err := h.sessions.RefreshToken(r.Context(), middleware.TokenFromContext(r.Context()))
	if err != nil {
		response.Error(w, apierror.Unauthorized("Invalid or expired token"))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":     "refreshed",
		"expires_at": data.ExpiresAt,
		"expires_in": int(h.sessions.TTL().Seconds()),
	})
}

// Me handles GET /api/v1/accounts/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.OK(w, middleware.CallerFromContext(r.Context()))
}

// DeleteMe handles DELETE /api/v1/accounts/me. The session used for the
// call is revoked along with the account.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.DeleteAccount(ctx, middleware.CallerFromContext(ctx)); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.sessions.RevokeToken(ctx, middleware.TokenFromContext(ctx)); err != nil {
		h.log.Warn("failed to revoke token of deleted account", zap.Error(err))
	}
	response.NoContent(w)
}

func (h *AuthHandler) issue(r *http.Request, account *model.Account) (*SessionResponse, error) {
	token, data, err := h.sessions.GenerateToken(r.Context(), account)
	if err != nil {
		h.log.Error("failed to generate token", zap.Int64("account_id", account.ID), zap.Error(err))
		return nil, apierror.InternalError("failed to generate token")
	}
	return &SessionResponse{
		Account:   account,
		Token:     token,
		ExpiresAt: data.ExpiresAt,
		ExpiresIn: int(h.sessions.TTL().Seconds()),
	}, nil
}
