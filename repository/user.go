package repository

import (
	"context"

	"github.com/taskforge/backend/domain"
)

// UserUpdate carries the mutable profile fields; nil means "leave unchanged".
type UserUpdate struct {
	FullName *string
	Email    *string
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIdentifier resolves a user by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	// SetRefreshToken overwrites the single session slot; empty clears it.
	SetRefreshToken(ctx context.Context, id string, tokenHash string) error
}
