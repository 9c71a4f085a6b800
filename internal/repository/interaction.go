package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meetlog/meetlog/internal/model"
)

// ErrUserReferenceMissing is returned when an interaction insert
// references a user row that no longer exists. The identity resolution
// earlier in the request is only an optimization for friendlier errors;
// the foreign key constraint checked here is the real guard.
var ErrUserReferenceMissing = errors.New("referenced user does not exist")

// Tx is a unit of work over a single database transaction. The identity
// resolution reads and the interaction insert of one request share the
// same Tx, so a user deleted between resolve and insert is caught by
// the foreign key check at commit time instead of orphaning a row.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Calling it after a successful Commit
// is safe and does nothing, so it can be deferred unconditionally.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// GetUserIDByExternalID resolves an external opaque id to the internal
// row id within this transaction. Returns ErrUserNotFound on no match.
func (t *Tx) GetUserIDByExternalID(ctx context.Context, externalID string) (int64, error) {
	query := `SELECT id FROM users WHERE external_id = $1`

	var id int64
	err := t.tx.QueryRow(ctx, query, externalID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to resolve external id: %w", err)
	}

	return id, nil
}

// CreateInteraction inserts exactly one interaction row within this
// transaction. Interactions are append-only; there is no update or
// delete counterpart.
func (t *Tx) CreateInteraction(ctx context.Context, interaction *model.Interaction) error {
	query := `
		INSERT INTO interactions (who, "where", "when", why, how, user_id, target_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := t.tx.QueryRow(ctx, query,
		interaction.Who,
		interaction.Where,
		interaction.When,
		interaction.Why,
		interaction.How,
		interaction.UserID,
		interaction.TargetUserID,
	).Scan(&interaction.ID, &interaction.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserReferenceMissing
		}
		return fmt.Errorf("failed to create interaction: %w", err)
	}

	return nil
}

// CountInteractions returns the total number of interaction rows.
func (r *Repository) CountInteractions(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return count, nil
}

// ListInteractionsByUser returns interactions recorded by the given
// internal user id, newest first.
func (r *Repository) ListInteractionsByUser(ctx context.Context, userID int64) ([]*model.Interaction, error) {
	query := `
		SELECT id, who, "where", "when", why, how, user_id, target_user_id, created_at
		FROM interactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*model.Interaction
	for rows.Next() {
		var in model.Interaction
		if err := rows.Scan(
			&in.ID,
			&in.Who,
			&in.Where,
			&in.When,
			&in.Why,
			&in.How,
			&in.UserID,
			&in.TargetUserID,
			&in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, &in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}

	return interactions, nil
}
