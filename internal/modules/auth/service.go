package auth

import (
	"context"
	"fmt"
	"strings"

	"hostel/internal/domain"
	"hostel/internal/logger"
	"hostel/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Service authenticates back-office staff. Guests never log in; their
// access code takes the place of an account.
type Service struct {
	users UserStore
	jwt   tokenIssuer
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserStore, jwt tokenIssuer) *Service {
	return &Service{users: users, jwt: jwt}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("user %s logged in", user.Email)
	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}

// CreateUser provisions a staff or admin account. The handler restricts
// this to admins.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	role := domain.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if role != domain.RoleStaff && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.InfoLogger.Infof("user %s created with role %s", user.Email, user.Role)
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
