package handler

import (
	"errors"
	"log"
	"net/http"

	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
	"lumio_social/internal/service"
	"lumio_social/internal/transport/http/middleware"
)

// AuthHandler groups wallet login endpoints. authService is nil when the
// challenge store (Redis) is unavailable.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Challenge issues a nonce for the wallet to sign
// POST /auth/challenge
func (h *AuthHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	if h.authService == nil {
		httputil.WriteServiceUnavailable(w, "Login is not available")
		return
	}
	var req model.ChallengeRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Wallet.IsZero() {
		httputil.WriteBadRequest(w, "Wallet is required")
		return
	}

	challenge, err := h.authService.IssueChallenge(r.Context(), req.Wallet)
	if err != nil {
		log.Printf("[ERROR] Challenge handler: %v", err)
		httputil.WriteInternalError(w, "Failed to issue challenge")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, challenge)
}

// Login redeems a signed challenge for an access token
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.authService == nil {
		httputil.WriteServiceUnavailable(w, "Login is not available")
		return
	}
	var req model.LoginRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Nonce == "" || req.Signature == "" {
		httputil.WriteBadRequest(w, "Nonce and signature are required")
		return
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrChallengeNotFound), errors.Is(err, model.ErrChallengeExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeChallengeInvalid, "Challenge is unknown or expired")
		case errors.Is(err, model.ErrInvalidSignature):
			httputil.WriteUnauthorizedWithCode(w, model.CodeInvalidSignature, "Signature does not match wallet")
		default:
			log.Printf("[ERROR] Login handler: %v", err)
			httputil.WriteInternalError(w, "Failed to login")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    res.AccessToken,
		Path:     "/",
		MaxAge:   res.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, res)
}

// Me returns the authenticated wallet
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"wallet": wallet.String(),
	})
}
