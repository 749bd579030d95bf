package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/tubeworks/accounts/internal/accounts/domain"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/jwtx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// TokenService issues, rotates, and revokes the access/refresh token pair.
//
// A user has a single refresh-token slot: every rotation overwrites it and
// every presented refresh token must match it byte for byte. That gives one
// active session per user and O(1) revocation without a blacklist.
type TokenService struct {
	Access  *jwtx.HS256
	Refresh *jwtx.HS256
	Store   store.Store
}

// Rotate issues a fresh token pair for the user and persists the new refresh
// token as the user's current one. Any previously issued refresh token stops
// being accepted the moment this returns.
func (s *TokenService) Rotate(ctx context.Context, u domain.User) (*domain.TokenPair, error) {
	now := time.Now()

	accessToken, err := s.Access.Sign(jwtx.NewAccessClaims(
		u.ID, u.Username, u.Email, u.FullName,
		s.Access.TTL(), s.Access.Issuer(), now,
	))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.Refresh.Sign(jwtx.NewRefreshClaims(
		u.ID, s.Refresh.TTL(), s.Refresh.Issuer(), now,
	))
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().UpdateRefreshToken(ctx, u.ID, &refreshToken); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.Access.TTL(),
	}, nil
}

// Exchange validates a presented refresh token and, when valid, rotates the
// pair. Validity requires both a good signature AND literal equality with the
// stored slot; a token that was rotated away verifies fine cryptographically
// but no longer matches, which is what revokes it.
func (s *TokenService) Exchange(ctx context.Context, presented string) (domain.User, *domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Refresh.Verify(presented)
	if err != nil {
		l.Info("refresh token rejected", slog.String("reason", err.Error()))
		return domain.User{}, nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh token rejected", slog.String("reason", "unknown subject"))
			return domain.User{}, nil, ErrInvalidRefresh
		}
		return domain.User{}, nil, err
	}

	if u.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(u.RefreshToken)) != 1 {
		l.Info("refresh token rejected",
			slog.String("reason", "token does not match stored slot"),
			slog.String("user_id", u.ID),
		)
		return domain.User{}, nil, ErrInvalidRefresh
	}

	pair, err := s.Rotate(ctx, u)
	if err != nil {
		return domain.User{}, nil, err
	}
	return u, pair, nil
}

// Revoke clears the user's refresh-token slot (logout).
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	return s.Store.Users().UpdateRefreshToken(ctx, userID, nil)
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(raw string) (jwtx.Claims, error) {
	return s.Access.Verify(raw)
}
