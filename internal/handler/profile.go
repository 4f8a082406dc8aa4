package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lumio_social/internal/host"
	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
	"lumio_social/internal/transport/http/middleware"
)

type ProfileHandler struct {
	runtime *host.Runtime
}

func NewProfileHandler(runtime *host.Runtime) *ProfileHandler {
	return &ProfileHandler{runtime: runtime}
}

func walletParam(r *http.Request) (model.ActorID, bool) {
	wallet, err := model.ParseActorID(chi.URLParam(r, "wallet"))
	return wallet, err == nil
}

// Get handles GET /profiles/{wallet}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid wallet")
		return
	}

	profile, err := h.runtime.Profile(wallet)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		writeActionError(w, "get profile", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Balance handles GET /balances/{wallet}
// Wallets that never earned report 0.
func (h *ProfileHandler) Balance(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid wallet")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.runtime.Balance(wallet))
}

// Update handles PUT /me/profile
// Only fields present in the body are overwritten.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.runtime.UpdateProfile(r.Context(), caller, req)
	if err != nil {
		writeActionError(w, "update profile", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}
