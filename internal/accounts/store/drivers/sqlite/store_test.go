package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tubeworks/accounts/internal/accounts/domain"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestUser(username, email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		AvatarURL:    "https://media.test/avatars/" + username + ".png",
	}
}

func TestUsersCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("alice", "alice@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	t.Run("by id", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Username, got.Username)
		require.Equal(t, u.Email, got.Email)
		require.Equal(t, u.AvatarURL, got.AvatarURL)
		require.Empty(t, got.RefreshToken)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("by username", func(t *testing.T) {
		got, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("by identifier matches username and email", func(t *testing.T) {
		got, err := s.Users().GetUserByIdentifier(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		got, err = s.Users().GetUserByIdentifier(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("unknown user is ErrNotFound", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, "no-such-id")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Users().GetUserByIdentifier(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUsersUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("alice", "alice@example.com")))

	err := s.Users().CreateUser(ctx, newTestUser("alice", "other@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = s.Users().CreateUser(ctx, newTestUser("other", "alice@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	exists, err := s.Users().ExistsByUsernameOrEmail(ctx, "alice", "unused@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.Users().ExistsByUsernameOrEmail(ctx, "unused", "unused@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUsersRefreshTokenSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("alice", "alice@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	token := "refresh-token-value"
	require.NoError(t, s.Users().UpdateRefreshToken(ctx, u.ID, &token))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, token, got.RefreshToken)

	// Overwrite replaces, nil clears.
	replacement := "newer-token"
	require.NoError(t, s.Users().UpdateRefreshToken(ctx, u.ID, &replacement))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, replacement, got.RefreshToken)

	require.NoError(t, s.Users().UpdateRefreshToken(ctx, u.ID, nil))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, got.RefreshToken)
}

func TestUsersUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("alice", "alice@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "$argon2id$new"))
	require.NoError(t, s.Users().UpdateProfile(ctx, u.ID, "Alice Renamed", "renamed@example.com", "renamed"))
	require.NoError(t, s.Users().UpdateAvatarURL(ctx, u.ID, "https://media.test/avatars/new.png"))
	require.NoError(t, s.Users().UpdateCoverImageURL(ctx, u.ID, "https://media.test/covers/new.png"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "$argon2id$new", got.PasswordHash)
	require.Equal(t, "Alice Renamed", got.FullName)
	require.Equal(t, "renamed@example.com", got.Email)
	require.Equal(t, "renamed", got.Username)
	require.Equal(t, "https://media.test/avatars/new.png", got.AvatarURL)
	require.Equal(t, "https://media.test/covers/new.png", got.CoverImageURL)
}

func TestUpdateProfileConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser("alice", "alice@example.com")
	bob := newTestUser("bob", "bob@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, alice))
	require.NoError(t, s.Users().CreateUser(ctx, bob))

	err := s.Users().UpdateProfile(ctx, bob.ID, "Bob", "bob@example.com", "alice")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSubscriptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	channel := newTestUser("channel", "channel@example.com")
	viewer := newTestUser("viewer", "viewer@example.com")
	other := newTestUser("other", "other@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, channel))
	require.NoError(t, s.Users().CreateUser(ctx, viewer))
	require.NoError(t, s.Users().CreateUser(ctx, other))

	subscribe := func(channelID, subscriberID string) error {
		return s.Subscriptions().CreateSubscription(ctx, domain.Subscription{
			ID:           idx.New().String(),
			ChannelID:    channelID,
			SubscriberID: subscriberID,
		})
	}

	require.NoError(t, subscribe(channel.ID, viewer.ID))
	require.NoError(t, subscribe(channel.ID, other.ID))
	require.NoError(t, subscribe(other.ID, channel.ID))

	t.Run("duplicate pair conflicts", func(t *testing.T) {
		require.ErrorIs(t, subscribe(channel.ID, viewer.ID), store.ErrAlreadyExists)
	})

	t.Run("aggregates", func(t *testing.T) {
		n, err := s.Subscriptions().CountSubscribers(ctx, channel.ID)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		n, err = s.Subscriptions().CountSubscriptions(ctx, channel.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		ok, err := s.Subscriptions().IsSubscribed(ctx, channel.ID, viewer.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Subscriptions().IsSubscribed(ctx, viewer.ID, channel.ID)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("delete removes pair", func(t *testing.T) {
		require.NoError(t, s.Subscriptions().DeleteSubscription(ctx, channel.ID, viewer.ID))

		ok, err := s.Subscriptions().IsSubscribed(ctx, channel.ID, viewer.ID)
		require.NoError(t, err)
		require.False(t, ok)

		// Deleting an absent pair is a no-op.
		require.NoError(t, s.Subscriptions().DeleteSubscription(ctx, channel.ID, viewer.ID))
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("alice", "alice@example.com")
	boom := assert.AnError

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("alice", "alice@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	require.NoError(t, err)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, got.Username)
}
