package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/internal/token"
	"github.com/taskforge/backend/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, update repository.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id string, tokenHash string) error {
	args := m.Called(ctx, id, tokenHash)
	return args.Error(0)
}

func newIssuer() *token.Issuer {
	return token.NewIssuer("test-secret", "taskforge-test", time.Minute, time.Hour)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignup(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	repo.On("Exists", mock.Anything, "ada", "ada@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(&domain.User{ID: "u1", Username: "ada", Email: "ada@example.com"}, nil)

	user, err := uc.Signup(context.Background(), "Ada Lovelace", "Ada ", "ada@example.com", "secret1x")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	created := repo.Calls[1].Arguments.Get(1).(*domain.User)
	assert.Equal(t, "ada", created.Username, "username folded to lowercase")
	assert.NotEqual(t, "secret1x", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1x")))
	repo.AssertExpectations(t)
}

func TestSignupDuplicateConflict(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	repo.On("Exists", mock.Anything, "ada", "ada@example.com").Return(true, nil)

	_, err := uc.Signup(context.Background(), "", "ada", "ada@example.com", "secret1x")
	assert.ErrorIs(t, err, domain.ErrUserExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginIssuesAndPersistsTokens(t *testing.T) {
	repo := new(MockUserRepository)
	issuer := newIssuer()
	uc := New(repo, issuer, bcrypt.MinCost, nil)

	stored := &domain.User{ID: "u1", Username: "ada", PasswordHash: hashPassword(t, "secret1x")}
	repo.On("GetByIdentifier", mock.Anything, "ada").Return(stored, nil)
	repo.On("SetRefreshToken", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)

	user, pair, err := uc.Login(context.Background(), "ada", "secret1x")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	userID, err := issuer.Verify(pair.AccessToken, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	persistedHash := repo.Calls[1].Arguments.String(2)
	assert.Equal(t, token.HashRefresh(pair.RefreshToken), persistedHash)
	repo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	stored := &domain.User{ID: "u1", PasswordHash: hashPassword(t, "secret1x")}
	repo.On("GetByIdentifier", mock.Anything, "ada").Return(stored, nil)

	_, pair, err := uc.Login(context.Background(), "ada", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, pair.AccessToken)
	repo.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginUnknownIdentifier(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	repo.On("GetByIdentifier", mock.Anything, "nobody").Return(nil, domain.ErrUserNotFound)

	_, _, err := uc.Login(context.Background(), "nobody", "secret1x")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRefreshRotatesTokens(t *testing.T) {
	repo := new(MockUserRepository)
	issuer := newIssuer()
	uc := New(repo, issuer, bcrypt.MinCost, nil)

	refresh, err := issuer.IssueRefresh("u1")
	require.NoError(t, err)

	stored := &domain.User{ID: "u1", RefreshToken: token.HashRefresh(refresh)}
	repo.On("GetByID", mock.Anything, "u1").Return(stored, nil)
	repo.On("SetRefreshToken", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)

	_, pair, err := uc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestRefreshRejectsRotatedSlot(t *testing.T) {
	repo := new(MockUserRepository)
	issuer := newIssuer()
	uc := New(repo, issuer, bcrypt.MinCost, nil)

	refresh, err := issuer.IssueRefresh("u1")
	require.NoError(t, err)

	// The slot was overwritten by a later login.
	stored := &domain.User{ID: "u1", RefreshToken: token.HashRefresh("a-newer-token")}
	repo.On("GetByID", mock.Anything, "u1").Return(stored, nil)

	_, _, err = uc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	repo.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := new(MockUserRepository)
	issuer := newIssuer()
	uc := New(repo, issuer, bcrypt.MinCost, nil)

	access, err := issuer.IssueAccess("u1")
	require.NoError(t, err)

	_, _, err = uc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogoutClearsSlot(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	repo.On("SetRefreshToken", mock.Anything, "u1", "").Return(nil)

	require.NoError(t, uc.Logout(context.Background(), "u1"))
	repo.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	stored := &domain.User{ID: "u1", PasswordHash: hashPassword(t, "oldpass1")}
	repo.On("GetByID", mock.Anything, "u1").Return(stored, nil)
	repo.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)

	require.NoError(t, uc.ChangePassword(context.Background(), "u1", "oldpass1", "newpass1"))

	newHash := repo.Calls[1].Arguments.String(2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("newpass1")))
	repo.AssertExpectations(t)
}

func TestChangePasswordWrongOld(t *testing.T) {
	repo := new(MockUserRepository)
	uc := New(repo, newIssuer(), bcrypt.MinCost, nil)

	stored := &domain.User{ID: "u1", PasswordHash: hashPassword(t, "oldpass1")}
	repo.On("GetByID", mock.Anything, "u1").Return(stored, nil)

	err := uc.ChangePassword(context.Background(), "u1", "wrong", "newpass1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}
