package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tubeworks/accounts/internal/accounts/store"
)

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	ctx := context.Background()

	u, err := users.Register(ctx, RegisterParams{
		Username:  "  Alice ",
		Email:     "Alice@Example.COM",
		FullName:  " Alice Example ",
		Password:  "P@ss1",
		AvatarURL: "https://media.test/avatars/a.png",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, "Alice Example", u.FullName)
	require.NotEmpty(t, u.ID)

	// The stored hash never equals the plaintext and is never returned in a
	// sanitized projection.
	require.NotEqual(t, "P@ss1", u.PasswordHash)
	sanitized := u.Sanitized()
	require.Empty(t, sanitized.PasswordHash)
	require.Empty(t, sanitized.RefreshToken)

	_, err = users.Register(ctx, RegisterParams{
		Username: "ALICE", Email: "fresh@example.com",
		FullName: "Someone", Password: "x", AvatarURL: "a",
	})
	require.ErrorIs(t, err, ErrUserExists)

	_, err = users.Register(ctx, RegisterParams{
		Username: "fresh", Email: "alice@example.com",
		FullName: "Someone", Password: "x", AvatarURL: "a",
	})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	ctx := context.Background()

	registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	t.Run("by username", func(t *testing.T) {
		u, err := users.Login(ctx, "alice", "P@ss1")
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)
	})

	t.Run("by email, case-insensitive", func(t *testing.T) {
		u, err := users.Login(ctx, "Alice@Example.COM", "P@ss1")
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := users.Login(ctx, "nobody", "P@ss1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := users.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	require.ErrorIs(t, users.ChangePassword(ctx, u.ID, "wrong", "P@ss2"), ErrInvalidCredentials)

	require.NoError(t, users.ChangePassword(ctx, u.ID, "P@ss1", "P@ss2"))

	_, err := users.Login(ctx, "alice", "P@ss1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Login(ctx, "alice", "P@ss2")
	require.NoError(t, err)
}

func TestUpdateAccount(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	ctx := context.Background()

	alice := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")
	registerTestUser(t, users, "bob", "bob@example.com", "P@ss1")

	t.Run("keeping own values is fine", func(t *testing.T) {
		u, err := users.UpdateAccount(ctx, alice.ID, "Alice Renamed", "alice@example.com", "alice")
		require.NoError(t, err)
		require.Equal(t, "Alice Renamed", u.FullName)
	})

	t.Run("new values are persisted lowercase", func(t *testing.T) {
		u, err := users.UpdateAccount(ctx, alice.ID, "Alice", "New.Alice@Example.com", "NewAlice")
		require.NoError(t, err)
		require.Equal(t, "new.alice@example.com", u.Email)
		require.Equal(t, "newalice", u.Username)
	})

	t.Run("conflicting username is rejected", func(t *testing.T) {
		_, err := users.UpdateAccount(ctx, alice.ID, "Alice", "new.alice@example.com", "bob")
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("conflicting email is rejected", func(t *testing.T) {
		_, err := users.UpdateAccount(ctx, alice.ID, "Alice", "bob@example.com", "newalice")
		require.ErrorIs(t, err, ErrUserExists)
	})
}

func TestSetAvatarAndCoverImage(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	ctx := context.Background()

	u := registerTestUser(t, users, "alice", "alice@example.com", "P@ss1")

	updated, err := users.SetAvatar(ctx, u.ID, "https://media.test/avatars/fresh.png")
	require.NoError(t, err)
	require.Equal(t, "https://media.test/avatars/fresh.png", updated.AvatarURL)

	updated, err = users.SetCoverImage(ctx, u.ID, "https://media.test/covers/fresh.png")
	require.NoError(t, err)
	require.Equal(t, "https://media.test/covers/fresh.png", updated.CoverImageURL)
}

func TestChannelProfileAndSubscriptions(t *testing.T) {
	st := newTestStore(t)
	users := &UserService{Store: st}
	ctx := context.Background()

	channel := registerTestUser(t, users, "channel", "channel@example.com", "P@ss1")
	viewer := registerTestUser(t, users, "viewer", "viewer@example.com", "P@ss1")
	other := registerTestUser(t, users, "other", "other@example.com", "P@ss1")

	require.NoError(t, users.Subscribe(ctx, "channel", viewer.ID))
	require.NoError(t, users.Subscribe(ctx, "channel", other.ID))
	require.NoError(t, users.Subscribe(ctx, "other", channel.ID))

	t.Run("subscribing twice is a no-op", func(t *testing.T) {
		require.NoError(t, users.Subscribe(ctx, "channel", viewer.ID))
	})

	t.Run("self subscription is rejected", func(t *testing.T) {
		require.ErrorIs(t, users.Subscribe(ctx, "channel", channel.ID), ErrSelfSubscription)
	})

	t.Run("unknown channel", func(t *testing.T) {
		require.ErrorIs(t, users.Subscribe(ctx, "ghost", viewer.ID), store.ErrNotFound)
		_, err := users.ChannelProfile(ctx, "ghost", viewer.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("profile aggregates for subscriber", func(t *testing.T) {
		p, err := users.ChannelProfile(ctx, "Channel", viewer.ID)
		require.NoError(t, err)
		require.Equal(t, channel.ID, p.ID)
		require.EqualValues(t, 2, p.SubscriberCount)
		require.EqualValues(t, 1, p.SubscribedToCount)
		require.True(t, p.IsSubscribed)
	})

	t.Run("profile aggregates for non-subscriber", func(t *testing.T) {
		p, err := users.ChannelProfile(ctx, "channel", channel.ID)
		require.NoError(t, err)
		require.False(t, p.IsSubscribed)
	})

	t.Run("unsubscribe updates aggregates", func(t *testing.T) {
		require.NoError(t, users.Unsubscribe(ctx, "channel", viewer.ID))

		p, err := users.ChannelProfile(ctx, "channel", viewer.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, p.SubscriberCount)
		require.False(t, p.IsSubscribed)
	})
}
