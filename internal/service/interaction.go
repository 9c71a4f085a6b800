package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetlog/meetlog/internal/metrics"
	"github.com/meetlog/meetlog/internal/model"
	"github.com/meetlog/meetlog/internal/repository"
)

// unauthorizedRecordMsg is returned verbatim to callers whose subject
// claim does not match the acting user.
const unauthorizedRecordMsg = "Unauthorized: requester must be the user recording the interaction"

// recordedMsg is the confirmation returned on success.
const recordedMsg = "Interaction recorded successfully"

// Store opens units of work for the interaction pipeline.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the slice of a database transaction the pipeline needs: two
// identity resolutions, one insert, and the commit/rollback pair.
type Tx interface {
	GetUserIDByExternalID(ctx context.Context, externalID string) (int64, error)
	CreateInteraction(ctx context.Context, interaction *model.Interaction) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Extractor turns free text into an interaction card.
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.InteractionCard, error)
}

// RecordInteractionInput is the transient request consumed by one
// orchestration pass and discarded after the response.
type RecordInteractionInput struct {
	Input        string // free text describing the encounter
	ActingUserID string // external id of the user recording
	TargetUserID string // external id of the other user
	Subject      string // requester's subject claim
}

// InteractionService orchestrates the recording pipeline:
// authorization, two-phase identity resolution, structured extraction,
// and transactional persistence, strictly in that order.
type InteractionService struct {
	store     Store
	extractor Extractor
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewInteractionService creates an InteractionService.
func NewInteractionService(store Store, extractor Extractor, logger *slog.Logger, recorder metrics.Recorder) *InteractionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &InteractionService{
		store:     store,
		extractor: extractor,
		logger:    logger,
		metrics:   recorder,
	}
}

// RecordInteraction runs one pass of the pipeline and returns a
// confirmation message. Any stage failure is terminal for the request:
// nothing is retried and nothing partial is committed.
func (s *InteractionService) RecordInteraction(ctx context.Context, input RecordInteractionInput) (string, error) {
	// Authorization comes before any database access.
	if err := Authorize(input.Subject, input.ActingUserID, unauthorizedRecordMsg); err != nil {
		return "", err
	}

	// One transaction spans the resolution reads and the final insert,
	// so the foreign key check at insert time sees the same snapshot
	// the resolver read from.
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: begin transaction: %v", ErrPersistenceFailed, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			s.logger.Error("transaction rollback failed", slog.String("error", err.Error()))
		}
	}()

	// Acting user resolves first; its failure short-circuits and the
	// target lookup is never attempted.
	actingID, err := tx.GetUserIDByExternalID(ctx, input.ActingUserID)
	if err != nil {
		return "", resolveError(input.ActingUserID, err)
	}

	targetID, err := tx.GetUserIDByExternalID(ctx, input.TargetUserID)
	if err != nil {
		return "", resolveError(input.TargetUserID, err)
	}

	start := time.Now()
	card, err := s.extractor.Extract(ctx, input.Input)
	if err != nil {
		s.metrics.IncExtractionFailed()
		// Diagnostic detail stays in the server log; the caller sees
		// only the classification.
		s.logger.Error("interaction extraction failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	s.metrics.ObserveExtractionDuration(time.Since(start))

	interaction := &model.Interaction{
		Who:          card.Who,
		Where:        card.Where,
		When:         card.When,
		Why:          card.Why,
		How:          card.How,
		UserID:       actingID,
		TargetUserID: targetID,
	}

	if err := tx.CreateInteraction(ctx, interaction); err != nil {
		s.logger.Error("failed to save interaction", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	s.metrics.IncInteractionRecorded()
	s.logger.Info("interaction recorded",
		slog.Int64("user_id", actingID),
		slog.Int64("target_user_id", targetID),
		slog.Int64("interaction_id", interaction.ID),
	)

	return recordedMsg, nil
}

// resolveError maps a resolution failure to the pipeline taxonomy,
// keeping track of which external id was being resolved.
func resolveError(externalID string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return &UserNotFoundError{ExternalID: externalID}
	}
	return fmt.Errorf("%w: resolve %s: %v", ErrPersistenceFailed, externalID, err)
}

// pgStore adapts the repository to the Store interface.
type pgStore struct {
	repo *repository.Repository
}

// NewPgStore wraps a Repository as a Store for the pipeline.
func NewPgStore(repo *repository.Repository) Store {
	return &pgStore{repo: repo}
}

func (s *pgStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
