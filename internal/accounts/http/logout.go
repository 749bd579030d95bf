package http

import (
	"net/http"

	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type LogoutHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP clears the refresh-token slot and expires both cookies. The
// access token keeps verifying until it expires, but no new pair can be
// minted from the revoked session.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	u, ok := UserFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.TokenService.Revoke(ctx, u.ID); err != nil {
		log.Error("logout failed", "error", err, "user_id", u.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.ClearAuthCookies(w)
	httpx.WriteEnvelope(w, http.StatusOK, nil, "user logged out successfully")
}
