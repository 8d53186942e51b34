package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"curvefund/internal/domain"
	"curvefund/internal/lifecycle"
	"curvefund/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Create inserts a new user.
func (s *UserStore) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if err := storage.ValidateUser(u); err != nil {
		return nil, err
	}

	ts := lifecycle.Create(time.Now().UTC())

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (
			id, wallet_address, username, avatar_url, x_handle, telegram_handle,
			created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)
	`,
		u.ID, u.WalletAddress, u.Username, u.AvatarURL, u.XHandle, u.TelegramHandle,
		ts.CreatedAt, ts.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	stored := *u
	stored.CreatedAt = ts.CreatedAt
	stored.UpdatedAt = ts.UpdatedAt
	stored.DeletedAt = nil
	return &stored, nil
}

// GetByID retrieves an active user.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, wallet_address, username, avatar_url, x_handle, telegram_handle,
		       created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, id)

	u, err := scanUser(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// scanUser scans a single row into a User.
func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.WalletAddress, &u.Username, &u.AvatarURL, &u.XHandle, &u.TelegramHandle,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
