package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"medtrack/internal/auth"
	apperrors "medtrack/internal/errors"
	"medtrack/internal/model"
	"medtrack/internal/repository"
)

// AdminService handles the operator actions of the configured admin.
type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ResetUserPassword(ctx context.Context, userID uint, newPassword string) error
}

// AdminCredentials are the fixed admin username and password from configuration.
type AdminCredentials struct {
	Username string
	Password string
}

type adminService struct {
	userRepo    repository.UserRepository
	jwtService  *auth.JWTService
	loginGuard  auth.LoginGuardInterface
	credentials AdminCredentials
}

// NewAdminService creates a new admin service.
func NewAdminService(userRepo repository.UserRepository, jwtService *auth.JWTService, loginGuard auth.LoginGuardInterface, credentials AdminCredentials) AdminService {
	return &adminService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		loginGuard:  loginGuard,
		credentials: credentials,
	}
}

// Login checks the credentials in constant time and issues an admin token.
func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	if s.credentials.Username == "" || s.credentials.Password == "" {
		return "", apperrors.ErrAdminNotConfigured
	}

	allowed, err := s.loginGuard.Allowed(ctx, auth.ScopeAdmin, username)
	if err != nil {
		return "", fmt.Errorf("check login attempts: %w", err)
	}
	if !allowed {
		return "", apperrors.ErrTooManyAttempts
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.credentials.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.credentials.Password))
	if userOK&passOK != 1 {
		_ = s.loginGuard.RecordFailure(ctx, auth.ScopeAdmin, username)
		return "", apperrors.ErrInvalidAdminCredentials
	}

	_ = s.loginGuard.Reset(ctx, auth.ScopeAdmin, username)
	token, err := s.jwtService.GenerateAdminToken(s.credentials.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *adminService) ResetUserPassword(ctx context.Context, userID uint, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
