// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetlog/meetlog/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 550550

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ProjectRoot returns the repository root directory.
func ProjectRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("resolve caller path")
	}
	// internal/testutil/testutil.go -> repo root
	return filepath.Abs(filepath.Join(filepath.Dir(file), "..", ".."))
}

// ResetSchema drops and recreates the users and interactions schemas
// for tests. Interactions go down first and up last because of the
// foreign keys into users.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	steps := []string{
		filepath.Join(root, "migrations", "000002_interactions.down.sql"),
		filepath.Join(root, "migrations", "000001_users.down.sql"),
		filepath.Join(root, "migrations", "000001_users.up.sql"),
		filepath.Join(root, "migrations", "000002_interactions.up.sql"),
	}

	for _, path := range steps {
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
	}

	return nil
}

// SeedUser inserts a user row directly and returns it with the
// generated id populated.
func SeedUser(ctx context.Context, pool *pgxpool.Pool, user *model.User) error {
	query := `
		INSERT INTO users (external_id, email, full_name, city)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := pool.QueryRow(ctx, query,
		user.ExternalID,
		user.Email,
		user.FullName,
		user.City,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	return nil
}
