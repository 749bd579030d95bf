package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type CurrentUserHandler struct{}

// ServeHTTP returns the identity attached by the session middleware.
func (h *CurrentUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, u, "current user fetched successfully")
}

type UpdateAccountHandler struct {
	UserService *service.UserService
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ServeHTTP replaces the caller's full name, email, and username.
func (h *UpdateAccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	u, ok := UserFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FullName) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Username) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "fullName, email, and username are required")
		return
	}

	updated, err := h.UserService.UpdateAccount(ctx, u.ID, req.FullName, req.Email, req.Username)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			httpx.WriteError(w, http.StatusConflict, "username or email already in use")
			return
		}
		log.Error("account update failed", "error", err, "user_id", u.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, updated.Sanitized(), "account details updated successfully")
}
