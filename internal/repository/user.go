package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meetlog/meetlog/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// CreateUser inserts a new user. The external id is written here and
// never touched by any update path afterward.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (external_id, email, full_name, city, bio, interests)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.ExternalID,
		user.Email,
		user.FullName,
		user.City,
		user.Bio,
		user.Interests,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, external_id, email, full_name, city, bio, interests, created_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.FullName,
		&user.City,
		&user.Bio,
		&user.Interests,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByExternalID retrieves a user by their external opaque id.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `
		SELECT id, external_id, email, full_name, city, bio, interests, created_at
		FROM users
		WHERE external_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.FullName,
		&user.City,
		&user.Bio,
		&user.Interests,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}

	return &user, nil
}

// UpdateUserProfile updates the mutable profile fields of the user with
// the given email. The external id is deliberately not part of this
// statement; it is immutable once assigned.
func (r *Repository) UpdateUserProfile(ctx context.Context, email, fullName, city string) error {
	query := `
		UPDATE users
		SET full_name = $1, city = $2
		WHERE email = $3
	`

	tag, err := r.pool.Exec(ctx, query, fullName, city, email)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
