package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"medtrack/internal/auth"
	apperrors "medtrack/internal/errors"
	"medtrack/internal/model"
	"medtrack/internal/repository"
)

const bcryptCost = 10

// AuthResult is a freshly issued token together with the user it belongs to.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles user registration, login and self-service account changes.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, login, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, username, email string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	loginGuard auth.LoginGuardInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, loginGuard auth.LoginGuardInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		loginGuard: loginGuard,
	}
}

// Register creates a new user with a hashed password and signs them in.
func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email, 0)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login authenticates by username or email. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	allowed, err := s.loginGuard.Allowed(ctx, auth.ScopeUser, login)
	if err != nil {
		return nil, fmt.Errorf("check login attempts: %w", err)
	}
	if !allowed {
		return nil, apperrors.ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.loginGuard.RecordFailure(ctx, auth.ScopeUser, login)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.loginGuard.RecordFailure(ctx, auth.ScopeUser, login)
		return nil, apperrors.ErrInvalidCredentials
	}

	_ = s.loginGuard.Reset(ctx, auth.ScopeUser, login)
	return s.issue(user)
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes username and email and reissues the token, which
// carries the username.
func (s *authService) UpdateProfile(ctx context.Context, userID uint, username, email string) (*AuthResult, error) {
	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email, userID)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if taken {
		return nil, apperrors.ErrUserTaken
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.ErrUserTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return s.issue(user)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.ErrIncorrectPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateUserToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
