package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tubeworks/accounts/internal/accounts/domain"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type LoginHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
}

type loginRequest struct {
	// Identifier is the preferred field; Username and Email are accepted as
	// aliases for clients that submit them separately.
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type loginResponse struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"` // access token lifetime in seconds
}

func (req *loginRequest) identifier() string {
	for _, v := range []string{req.Identifier, req.Username, req.Email} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// ServeHTTP authenticates a user and issues the token pair, as both cookies
// and body fields.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := req.identifier()
	if identifier == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	u, err := h.UserService.Login(ctx, identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user does not exist")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid user credentials")
		default:
			log.Error("login failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	pair, err := h.TokenService.Rotate(ctx, u)
	if err != nil {
		log.Error("token rotation failed", "error", err, "user_id", u.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.SetAuthCookies(w, pair.AccessToken, pair.RefreshToken,
		h.TokenService.Access.TTL(), h.TokenService.Refresh.TTL())
	httpx.NoCache(w)
	httpx.WriteEnvelope(w, http.StatusOK, loginResponse{
		User:         u.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}, "user logged in successfully")
}
