package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tubeworks/accounts/internal/accounts/domain"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type ctxKey string

const ctxKeyUser ctxKey = "session_user"

// UserFromContext returns the authenticated user attached by SessionMiddleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// SessionMiddleware gates a route behind a valid access token. The token is
// read from the accessToken cookie first, then from the Authorization header.
//
// Every failure mode produces the same 401 envelope; the sub-reason only goes
// to the log. The middleware never writes to the store.
func SessionMiddleware(tokens *service.TokenService, st store.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := tokenFromRequest(r)
			if raw == "" {
				log.Info("request rejected", slog.String("reason", "no access token"))
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := tokens.VerifyAccess(raw)
			if err != nil {
				log.Info("request rejected", slog.String("reason", err.Error()))
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			u, err := st.Users().GetUserByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					log.Info("request rejected",
						slog.String("reason", "token subject no longer exists"),
						slog.String("user_id", claims.Subject),
					)
					httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				log.Error("session user lookup failed", slog.Any("error", err))
				httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx = context.WithValue(ctx, ctxKeyUser, u.Sanitized())
			ctx = httpx.WithUserID(ctx, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(httpx.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
