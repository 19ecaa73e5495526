package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// RoleAdmin marks admin tokens.
const RoleAdmin = "admin"

// ErrInvalidToken is returned for any token that fails signature, expiry or
// shape checks.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims represents the claims carried by a user token.
type UserClaims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminClaims represents the claims carried by an admin token. It has no
// user id; admins are not database rows.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret      []byte
	userExpiry  time.Duration
	adminExpiry time.Duration
	now         func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token
// lifetimes.
func NewJWTService(secret string, userExpiry, adminExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:      []byte(secret),
		userExpiry:  userExpiry,
		adminExpiry: adminExpiry,
		now:         time.Now,
	}
}

func (s *JWTService) registered(expiry time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// GenerateUserToken signs a token for a registered user.
func (s *JWTService) GenerateUserToken(userID uint, username string) (string, error) {
	claims := &UserClaims{
		UserID:           userID,
		Username:         username,
		RegisteredClaims: s.registered(s.userExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// GenerateAdminToken signs a token for the configured admin.
func (s *JWTService) GenerateAdminToken(username string) (string, error) {
	claims := &AdminClaims{
		Username:         username,
		Role:             RoleAdmin,
		RegisteredClaims: s.registered(s.adminExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateUserToken validates a user token. Admin tokens are rejected.
func (s *JWTService) ValidateUserToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAdminToken validates an admin token. User tokens are rejected.
func (s *JWTService) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
