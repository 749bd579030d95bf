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

type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime in seconds
}

// ServeHTTP exchanges a refresh token for a fresh pair. The token comes from
// the refreshToken cookie or, failing that, the JSON body.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	presented := refreshTokenFromRequest(r)
	if presented == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	_, pair, err := h.TokenService.Exchange(ctx, presented)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		log.Error("refresh exchange failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.SetAuthCookies(w, pair.AccessToken, pair.RefreshToken,
		h.TokenService.Access.TTL(), h.TokenService.Refresh.TTL())
	httpx.NoCache(w)
	httpx.WriteEnvelope(w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}, "access token refreshed")
}

func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(httpx.RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}
