package identity

import (
	"context"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/identity"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func createAuthService(userRepo *MockUserRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "atelier-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(userRepo, jwtService, blacklist, zap.NewNop()), blacklist
}

func createTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("claire@atelier.test", "Claire Martin", "Password123", role)
	require.NoError(t, err)
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", ctx, "new@atelier.test").Return(false, nil)
	userRepo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	svc, _ := createAuthService(userRepo)
	result, err := svc.Register(ctx, RegisterInput{
		Email:    "  New@Atelier.test ",
		Name:     "Nouveau",
		Password: "Password123",
		Role:     identity.RoleClient,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "new@atelier.test", result.User.Email)
	assert.Equal(t, identity.RoleClient, result.User.Role)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_RejectsAdminRole(t *testing.T) {
	svc, _ := createAuthService(new(MockUserRepository))
	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@atelier.test", Name: "A", Password: "Password123", Role: identity.RoleAdmin,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", ctx, "claire@atelier.test").Return(true, nil)

	svc, _ := createAuthService(userRepo)
	_, err := svc.Register(ctx, RegisterInput{
		Email: "claire@atelier.test", Name: "Claire", Password: "Password123",
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleDesigner)
	userRepo.On("FindByEmail", ctx, "claire@atelier.test").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc, _ := createAuthService(userRepo)
	result, err := svc.Login(ctx, LoginInput{Email: "CLAIRE@atelier.test", Password: "Password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotNil(t, user.LastLoginAt)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleDesigner)
	userRepo.On("FindByEmail", ctx, "claire@atelier.test").Return(user, nil)
	userRepo.On("FindByEmail", ctx, "ghost@atelier.test").Return(nil, shared.NewNotFoundError("User"))

	svc, _ := createAuthService(userRepo)

	_, errWrong := svc.Login(ctx, LoginInput{Email: "claire@atelier.test", Password: "nope-nope"})
	_, errUnknown := svc.Login(ctx, LoginInput{Email: "ghost@atelier.test", Password: "Password123"})

	require.ErrorIs(t, errWrong, shared.ErrUnauthorized)
	require.ErrorIs(t, errUnknown, shared.ErrUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleDesigner)
	userRepo.On("FindByEmail", ctx, "claire@atelier.test").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	svc, blacklist := createAuthService(userRepo)
	login, err := svc.Login(ctx, LoginInput{Email: "claire@atelier.test", Password: "Password123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, 1, blacklist.Len())

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	svc, _ := createAuthService(new(MockUserRepository))
	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleDesigner)
	userRepo.On("FindByEmail", ctx, "claire@atelier.test").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc, _ := createAuthService(userRepo)
	login, err := svc.Login(ctx, LoginInput{Email: "claire@atelier.test", Password: "Password123"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Logout_RevokesAccessToken(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleClient)
	userRepo.On("FindByEmail", ctx, "claire@atelier.test").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc, blacklist := createAuthService(userRepo)
	login, err := svc.Login(ctx, LoginInput{Email: "claire@atelier.test", Password: "Password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.AccessToken))

	claims, err := svc.tokens.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleDesigner)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	missing := uuid.New()
	userRepo.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("User"))

	svc, _ := createAuthService(userRepo)
	info, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Claire Martin", info.Name)

	_, err = svc.Me(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthService_EnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", ctx, "admin@atelier.test").Return(false, nil).Once()
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Role == identity.RoleAdmin && u.Name == "Administrator"
	})).Return(nil).Once()
	userRepo.On("ExistsByEmail", ctx, "admin@atelier.test").Return(true, nil).Once()

	svc, _ := createAuthService(userRepo)

	created, err := svc.EnsureAdmin(ctx, "Admin@atelier.test", "AdminPass123", "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin@atelier.test", "AdminPass123", "")
	require.NoError(t, err)
	assert.False(t, created)
	userRepo.AssertExpectations(t)
}
