package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetlog/meetlog/internal/metrics"
	"github.com/meetlog/meetlog/internal/model"
	"github.com/meetlog/meetlog/internal/repository"
)

// Upsert outcome messages, returned verbatim to the caller.
const (
	msgUserCreated   = "User payload processed successfully"
	msgUserUpdated   = "User updated"
	msgUserUnchanged = "User already up to date"
)

// errProcessingUserMsg deliberately does not say whether the email
// exists or whose external id it is bound to.
const errProcessingUserMsg = "Error processing user"

// UserStore is the slice of the repository the user upsert needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUserProfile(ctx context.Context, email, fullName, city string) error
}

// UpsertUserInput carries one user payload. Email is the lookup key;
// Subject becomes the external id if the user does not exist yet.
type UpsertUserInput struct {
	Email    string
	FullName string
	City     string
	Subject  string
}

// UserService handles user upsert logic.
type UserService struct {
	store   UserStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserService creates a UserService.
func NewUserService(store UserStore, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		logger:  logger,
		metrics: recorder,
	}
}

// ProcessUserPayload creates the user if the email is unknown, binding
// the subject claim as the external id at that moment and never again.
// For an existing user the stored external id must match the subject;
// then only the changed profile fields are written.
func (s *UserService) ProcessUserPayload(ctx context.Context, input UpsertUserInput) (string, error) {
	existing, err := s.store.GetUserByEmail(ctx, input.Email)

	switch {
	case err == nil:
		// The external id is immutable; a mismatched subject gets the
		// same opaque answer as any other processing failure.
		if err := Authorize(input.Subject, existing.ExternalID, errProcessingUserMsg); err != nil {
			return "", err
		}

		if existing.FullName == input.FullName && existing.City == input.City {
			s.metrics.IncUserUpserted("unchanged")
			return msgUserUnchanged, nil
		}

		if err := s.store.UpdateUserProfile(ctx, input.Email, input.FullName, input.City); err != nil {
			return "", fmt.Errorf("%w: update user: %v", ErrPersistenceFailed, err)
		}

		s.metrics.IncUserUpserted("updated")
		s.logger.Info("user updated", slog.Int64("user_id", existing.ID))
		return msgUserUpdated, nil

	case errors.Is(err, repository.ErrUserNotFound):
		user := &model.User{
			ExternalID: input.Subject,
			Email:      input.Email,
			FullName:   input.FullName,
			City:       input.City,
		}

		if err := s.store.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrUserExists) {
				// Lost a creation race, or the subject collides with an
				// external id already bound to another user.
				return "", &UnauthorizedError{Message: errProcessingUserMsg}
			}
			return "", fmt.Errorf("%w: create user: %v", ErrPersistenceFailed, err)
		}

		s.metrics.IncUserUpserted("created")
		s.logger.Info("user created", slog.Int64("user_id", user.ID))
		return msgUserCreated, nil

	default:
		return "", fmt.Errorf("%w: lookup user: %v", ErrPersistenceFailed, err)
	}
}
