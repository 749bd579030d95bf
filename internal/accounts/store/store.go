package store

import (
	"context"
	"errors"

	"github.com/tubeworks/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Subscriptions() Subscriptions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername returns a user by exact (lowercase) username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByIdentifier matches the identifier against both the username
	// and email columns. Identifiers are normalized lowercase before lookup.
	GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error)

	// ExistsByUsernameOrEmail reports whether any user holds either value.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Duplicate username or email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRefreshToken overwrites the single refresh-token slot.
	// A nil token clears the slot (logout / revocation).
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateProfile mutates full name, email, and username together.
	UpdateProfile(ctx context.Context, userID, fullName, email, username string) error

	// UpdateAvatarURL sets the avatar URL and bumps updated_at.
	UpdateAvatarURL(ctx context.Context, userID, url string) error

	// UpdateCoverImageURL sets the cover image URL and bumps updated_at.
	UpdateCoverImageURL(ctx context.Context, userID, url string) error
}

type Subscriptions interface {
	// CreateSubscription records a subscriber following a channel.
	// Duplicate pairs surface as ErrAlreadyExists.
	CreateSubscription(ctx context.Context, s domain.Subscription) error

	// DeleteSubscription removes a channel/subscriber pair.
	DeleteSubscription(ctx context.Context, channelID, subscriberID string) error

	// CountSubscribers counts users subscribed to the channel.
	CountSubscribers(ctx context.Context, channelID string) (int64, error)

	// CountSubscriptions counts channels the user is subscribed to.
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)

	// IsSubscribed reports whether subscriber follows channel.
	IsSubscribed(ctx context.Context, channelID, subscriberID string) (bool, error)
}
