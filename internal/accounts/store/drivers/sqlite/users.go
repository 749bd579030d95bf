package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tubeworks/accounts/internal/accounts/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u       domain.User
		cover   sql.NullString
		refresh sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.AvatarURL,
		&cover,
		&refresh,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CoverImageURL = mapNullString(cover)
	u.RefreshToken = mapNullString(refresh)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?
	`, username)
	return scanUser(row)
}

func (r *usersRepo) GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?1 OR email = ?1
	`, identifier)
	return scanUser(row)
}

func (r *usersRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM users
		WHERE username = ? OR email = ?
	`, username, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if !u.CreatedAt.IsZero() {
		now = u.CreatedAt
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
	`, u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverImageURL, now, now)
	return mapConflict(err)
}

func (r *usersRepo) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = ?, updated_at = ?
		WHERE id = ?
	`, mapOptionalString(token), time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ?
	`, newHash, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, fullName, email, username string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET full_name = ?, email = ?, username = ?, updated_at = ?
		WHERE id = ?
	`, fullName, email, username, time.Now().UTC(), userID)
	return mapConflict(err)
}

func (r *usersRepo) UpdateAvatarURL(ctx context.Context, userID, url string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET avatar_url = ?, updated_at = ?
		WHERE id = ?
	`, url, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) UpdateCoverImageURL(ctx context.Context, userID, url string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET cover_image_url = ?, updated_at = ?
		WHERE id = ?
	`, url, time.Now().UTC(), userID)
	return err
}
