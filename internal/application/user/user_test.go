package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	args := m.Called(ctx, email, password, name)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

type mockRevoker struct {
	mock.Mock
}

func (m *mockRevoker) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func TestRegisterUseCase(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Register", mock.Anything, "a@example.com", "passw0rd1", "Alice").
		Return(&user.User{ID: 1, Email: "a@example.com", Name: "Alice", Password: "hash"}, nil)

	resp, err := NewRegisterUseCase(svc).Execute(context.Background(), RegisterRequest{
		Email: "a@example.com", Password: "passw0rd1", Name: "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, "Alice", resp.Name)
}

func TestRegisterUseCase_Duplicate(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, user.ErrEmailDuplicate)

	_, err := NewRegisterUseCase(svc).Execute(context.Background(), RegisterRequest{Email: "a@example.com"})

	assert.ErrorIs(t, err, user.ErrEmailDuplicate)
}

func TestLoginUseCase_IssuesParsableToken(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Login", mock.Anything, "a@example.com", "passw0rd1").
		Return(&user.User{ID: 7, Email: "a@example.com", Name: "Alice"}, nil)
	manager := jwt.NewManager("secret", time.Hour)

	resp, err := NewLoginUseCase(svc, manager).Execute(context.Background(), LoginRequest{
		Email: "a@example.com", Password: "passw0rd1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := manager.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
}

func TestLoginUseCase_InvalidCredentials(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, user.ErrInvalidCredentials)

	_, err := NewLoginUseCase(svc, jwt.NewManager("secret", time.Hour)).Execute(context.Background(), LoginRequest{})

	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogoutUseCase(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	token, err := manager.GenerateToken(7, "a@example.com", "Alice")
	require.NoError(t, err)
	claims, err := manager.ParseToken(token.AccessToken)
	require.NoError(t, err)

	revoker := new(mockRevoker)
	revoker.On("Add", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, NewLogoutUseCase(revoker, manager).Execute(context.Background(), claims))
	revoker.AssertExpectations(t)
}

func TestLogoutUseCase_RevokerError(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	revoker := new(mockRevoker)
	boom := errors.New("redis down")
	revoker.On("Add", mock.Anything, mock.Anything, mock.Anything).Return(boom)

	err := NewLogoutUseCase(revoker, manager).Execute(context.Background(), &jwt.Claims{UserID: 7})

	assert.ErrorIs(t, err, boom)
}
