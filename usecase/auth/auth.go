package auth

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/internal/token"
	"github.com/taskforge/backend/repository"
)

// TokenPair is the access/refresh credential pair minted on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UseCase struct {
	users      repository.UserRepository
	tokens     *token.Issuer
	bcryptCost int
	logger     *zap.Logger
}

func New(users repository.UserRepository, tokens *token.Issuer, bcryptCost int, logger *zap.Logger) *UseCase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Signup registers a new account. The returned user carries no secret fields;
// duplicate username or email fails with a CONFLICT error.
func (uc *UseCase) Signup(ctx context.Context, fullName, username, email, password string) (*domain.User, error) {
	user := &domain.User{
		FullName: fullName,
		Username: username,
		Email:    email,
	}
	user.Normalize()

	exists, err := uc.users.Exists(ctx, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	created, err := uc.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", created.ID), zap.String("username", created.Username))
	return created, nil
}

// Login resolves the identifier (username or email), verifies the password
// and mints a fresh token pair. The refresh token hash overwrites the user's
// single session slot, invalidating any previous refresh token.
func (uc *UseCase) Login(ctx context.Context, identifier, password string) (*domain.User, TokenPair, error) {
	user, err := uc.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := uc.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Refresh rotates the token pair. The presented refresh token must verify
// cryptographically and match the persisted session slot; rotation makes the
// old refresh token unusable.
func (uc *UseCase) Refresh(ctx context.Context, refreshToken string) (*domain.User, TokenPair, error) {
	userID, err := uc.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, TokenPair{}, domain.ErrInvalidToken
	}
	if !user.HasSession() || user.RefreshToken != token.HashRefresh(refreshToken) {
		return nil, TokenPair{}, domain.ErrInvalidToken
	}

	pair, err := uc.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Logout clears the refresh session slot.
func (uc *UseCase) Logout(ctx context.Context, userID string) error {
	if err := uc.users.SetRefreshToken(ctx, userID, ""); err != nil {
		return err
	}
	uc.logger.Info("user logged out", zap.String("user_id", userID))
	return nil
}

// CurrentUser loads the authenticated user's own record.
func (uc *UseCase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile changes only the supplied fields.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, update repository.UserUpdate) (*domain.User, error) {
	return uc.users.UpdateProfile(ctx, userID, update)
}

// ChangePassword verifies the old password before replacing the hash.
func (uc *UseCase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), uc.bcryptCost)
	if err != nil {
		return err
	}

	if err := uc.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	uc.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

func (uc *UseCase) issueTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := uc.tokens.IssueAccess(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := uc.tokens.IssueRefresh(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := uc.users.SetRefreshToken(ctx, user.ID, token.HashRefresh(refresh)); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
