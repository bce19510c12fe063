package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pratijat22/LetsEarn/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin console authentication. The allow-list is
// resolved once from config at startup and never mutated at runtime.
type AuthService struct {
	jwtSecret    string
	allowList    []string
	passwordHash []byte
}

// NewAuthService creates a new AuthService. The configured admin password is
// hashed once here so the plaintext never sticks around.
func NewAuthService(jwtSecret string, allowList []string, adminPassword string) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	normalized := make([]string, len(allowList))
	for i, e := range allowList {
		normalized[i] = domain.NormalizeEmail(e)
	}

	return &AuthService{
		jwtSecret:    jwtSecret,
		allowList:    normalized,
		passwordHash: hash,
	}, nil
}

// IsAdmin reports whether an email is on the allow-list. Pure function of its
// inputs.
func IsAdmin(email string, allowList []string) bool {
	email = domain.NormalizeEmail(email)
	for _, allowed := range allowList {
		if email == allowed {
			return true
		}
	}
	return false
}

// Login checks credentials and returns a signed bearer token.
func (s *AuthService) Login(email, password string) (*domain.AdminLoginResponse, error) {
	email = domain.NormalizeEmail(email)
	if !IsAdmin(email, s.allowList) {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, domain.ErrInternal("failed to sign token", err)
	}

	return &domain.AdminLoginResponse{Token: signed, Email: email}, nil
}

// VerifyToken validates a bearer token and returns the admin email. The
// allow-list is checked again so a token minted before a config change cannot
// outlive its removal from the list.
func (s *AuthService) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", domain.ErrUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized("invalid token claims")
	}

	email, _ := claims["sub"].(string)
	if !IsAdmin(email, s.allowList) {
		return "", domain.ErrForbidden("not an admin")
	}
	return email, nil
}
