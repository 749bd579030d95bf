package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tubeworks/accounts/internal/accounts/domain"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/cryptox"
	"github.com/tubeworks/accounts/pkg/idx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

var (
	ErrUserExists       = errors.New("user_already_exists")
	ErrSelfSubscription = errors.New("self_subscription")
)

// UserService owns account lifecycle: registration, login verification,
// password changes, profile updates, and channel subscription queries.
type UserService struct {
	Store store.Store
}

// RegisterParams carries the validated registration input. Avatar and cover
// URLs are resolved by the HTTP layer (media upload) before registration.
type RegisterParams struct {
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	CoverImageURL string
}

// Taken reports whether the username or email is already registered. Callers
// can use it as a cheap pre-check before doing expensive registration work.
func (s *UserService) Taken(ctx context.Context, username, email string) (bool, error) {
	return s.Store.Users().ExistsByUsernameOrEmail(ctx,
		strings.ToLower(strings.TrimSpace(username)),
		strings.ToLower(strings.TrimSpace(email)),
	)
}

// Register creates a new account. Username and email are stored lowercase and
// must be unique across both columns.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(p.Username))
	email := strings.ToLower(strings.TrimSpace(p.Email))

	exists, err := s.Store.Users().ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, ErrUserExists
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(p.FullName),
		PasswordHash:  hash,
		AvatarURL:     p.AvatarURL,
		CoverImageURL: p.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		// Concurrent registration can slip past the pre-check; the UNIQUE
		// index is the real guard.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	return u, nil
}

// Login verifies credentials against the stored hash. The identifier may be a
// username or an email, matched case-insensitively. An unknown identifier
// surfaces as store.ErrNotFound; a bad password as ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, identifier, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	u, err := s.Store.Users().GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("user_id", u.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	return u, nil
}

// ChangePassword verifies the old password before storing a hash of the new
// one. Issued tokens stay valid; only the credential changes.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(oldPassword, u.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// UpdateAccount replaces the user's full name, email, and username. A
// username or email already held by another account is a conflict.
func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email, username string) (domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)

	// Reject values held by a different account. The caller keeping its own
	// current username or email is fine.
	for _, identifier := range []string{username, email} {
		other, err := s.Store.Users().GetUserByIdentifier(ctx, identifier)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return domain.User{}, err
		}
		if other.ID != userID {
			return domain.User{}, ErrUserExists
		}
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, fullName, email, username); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, userID)
}

// SetAvatar persists a freshly uploaded avatar URL.
func (s *UserService) SetAvatar(ctx context.Context, userID, url string) (domain.User, error) {
	if err := s.Store.Users().UpdateAvatarURL(ctx, userID, url); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// SetCoverImage persists a freshly uploaded cover image URL.
func (s *UserService) SetCoverImage(ctx context.Context, userID, url string) (domain.User, error) {
	if err := s.Store.Users().UpdateCoverImageURL(ctx, userID, url); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ChannelProfile returns the public channel view for a username, with
// subscription aggregates computed relative to the viewing user.
func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (domain.ChannelProfile, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return domain.ChannelProfile{}, err
	}

	subs := s.Store.Subscriptions()

	subscriberCount, err := subs.CountSubscribers(ctx, u.ID)
	if err != nil {
		return domain.ChannelProfile{}, err
	}
	subscribedToCount, err := subs.CountSubscriptions(ctx, u.ID)
	if err != nil {
		return domain.ChannelProfile{}, err
	}

	var isSubscribed bool
	if viewerID != "" {
		isSubscribed, err = subs.IsSubscribed(ctx, u.ID, viewerID)
		if err != nil {
			return domain.ChannelProfile{}, err
		}
	}

	return domain.ChannelProfile{
		ID:                u.ID,
		Username:          u.Username,
		FullName:          u.FullName,
		Email:             u.Email,
		AvatarURL:         u.AvatarURL,
		CoverImageURL:     u.CoverImageURL,
		SubscriberCount:   subscriberCount,
		SubscribedToCount: subscribedToCount,
		IsSubscribed:      isSubscribed,
	}, nil
}

// Subscribe records subscriberID following the channel named by username.
// Subscribing twice is a no-op; subscribing to yourself is rejected.
func (s *UserService) Subscribe(ctx context.Context, channelUsername, subscriberID string) error {
	channel, err := s.Store.Users().GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(channelUsername)))
	if err != nil {
		return err
	}
	if channel.ID == subscriberID {
		return ErrSelfSubscription
	}

	err = s.Store.Subscriptions().CreateSubscription(ctx, domain.Subscription{
		ID:           idx.New().String(),
		ChannelID:    channel.ID,
		SubscriberID: subscriberID,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

// Unsubscribe removes the subscription, if any.
func (s *UserService) Unsubscribe(ctx context.Context, channelUsername, subscriberID string) error {
	channel, err := s.Store.Users().GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(channelUsername)))
	if err != nil {
		return err
	}
	return s.Store.Subscriptions().DeleteSubscription(ctx, channel.ID, subscriberID)
}
