package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tubeworks/accounts/pkg/jwtx"
)

func TestRotateIssuesPairAndPersistsSlot(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	tokens := newTestTokenService(t, st)
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	pair, err := tokens.Rotate(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "alice", claims.Username)

	// An access token must never verify as a refresh token, and vice versa.
	_, err = tokens.Refresh.Verify(pair.AccessToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	_, err = tokens.VerifyAccess(pair.RefreshToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestExchangeRotatesAndRevokesPrior(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	tokens := newTestTokenService(t, st)
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	first, err := tokens.Rotate(ctx, u)
	require.NoError(t, err)

	gotUser, second, err := tokens.Exchange(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotUser.ID)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The first token still verifies cryptographically but no longer matches
	// the slot, so replaying it must fail.
	_, _, err = tokens.Exchange(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// The second token is the live one.
	_, third, err := tokens.Exchange(ctx, second.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, second.RefreshToken, third.RefreshToken)
}

func TestExchangeRejectsRevokedSession(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	tokens := newTestTokenService(t, st)
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	pair, err := tokens.Rotate(ctx, u)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, u.ID))

	_, _, err = tokens.Exchange(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestExchangeRejectsExpiredRefreshToken(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	tokens := newTestTokenService(t, st)
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	// Plant an already-expired token in the slot so literal equality holds
	// but verification fails.
	expired, err := tokens.Refresh.Sign(jwtx.NewRefreshClaims(
		u.ID, -time.Minute, tokens.Refresh.Issuer(), time.Now(),
	))
	require.NoError(t, err)
	require.NoError(t, st.Users().UpdateRefreshToken(ctx, u.ID, &expired))

	_, _, err = tokens.Exchange(ctx, expired)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestExchangeRejectsForeignAndGarbageTokens(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	tokens := newTestTokenService(t, st)
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")
	_, err := tokens.Rotate(ctx, u)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, _, err := tokens.Exchange(ctx, "garbage")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("unknown subject", func(t *testing.T) {
		foreign, err := tokens.Refresh.Sign(jwtx.NewRefreshClaims(
			"no-such-user", time.Hour, tokens.Refresh.Issuer(), time.Now(),
		))
		require.NoError(t, err)

		_, _, err = tokens.Exchange(ctx, foreign)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}
