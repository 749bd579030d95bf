package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type ChangePasswordHandler struct {
	UserService *service.UserService
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ServeHTTP changes the caller's password after verifying the old one.
// Already-issued tokens stay valid.
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	u, ok := UserFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "old and new passwords are required")
		return
	}

	if err := h.UserService.ChangePassword(ctx, u.ID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid old password")
			return
		}
		log.Error("password change failed", "error", err, "user_id", u.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, nil, "password changed successfully")
}
