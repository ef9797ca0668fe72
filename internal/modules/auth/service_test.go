package auth

import (
	"context"
	"testing"

	"hostel/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateToken(userID int64, role string) (string, error) {
	return "token-for-test", nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestService_Login_Success(t *testing.T) {
	users := new(MockUserStore)
	users.On("GetByEmail", mock.Anything, "staff@hostel.test").Return(&domain.User{
		ID:           7,
		Email:        "staff@hostel.test",
		PasswordHash: hashOf(t, "correct horse"),
		Role:         domain.RoleStaff,
	}, nil)

	svc := NewService(users, fakeTokenIssuer{})

	result, err := svc.Login(context.Background(), LoginRequest{Email: " Staff@Hostel.Test ", Password: "correct horse"})

	assert.NoError(t, err)
	assert.Equal(t, "token-for-test", result.AccessToken)
	assert.Empty(t, result.User.PasswordHash)
}

func TestService_Login_WrongPassword(t *testing.T) {
	users := new(MockUserStore)
	users.On("GetByEmail", mock.Anything, "staff@hostel.test").Return(&domain.User{
		ID:           7,
		Email:        "staff@hostel.test",
		PasswordHash: hashOf(t, "correct horse"),
	}, nil)

	svc := NewService(users, fakeTokenIssuer{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "staff@hostel.test", Password: "wrong"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	users := new(MockUserStore)
	users.On("GetByEmail", mock.Anything, "ghost@hostel.test").Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(users, fakeTokenIssuer{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@hostel.test", Password: "anything"})

	// unknown email and bad password are indistinguishable for the caller
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_CreateUser(t *testing.T) {
	users := new(MockUserStore)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(users, fakeTokenIssuer{})

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "New@Hostel.Test",
		Password: "s3cret-enough",
		Name:     "New Staff",
		Role:     "STAFF",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@hostel.test", user.Email)
	assert.Equal(t, domain.RoleStaff, user.Role)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "x@hostel.test",
		Password: "s3cret-enough",
		Name:     "X",
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, ErrValidation)
}
