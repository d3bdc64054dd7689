package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActorType distinguishes guest and staff tokens
type ActorType string

const (
	ActorUser  ActorType = "user"
	ActorStaff ActorType = "staff"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	AccessToken    TokenType = "access"
	SetPasswordTok TokenType = "set-password"
)

// Claims represents the JWT claims structure
type Claims struct {
	ActorID   int64     `json:"id"`
	ActorType ActorType `json:"type"`
	RoleName  string    `json:"roleName,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Service handles JWT operations
type Service struct {
	secret            string
	accessTokenExpiry time.Duration
	magicLinkExpiry   time.Duration
}

// NewService creates a new JWT service
func NewService(secret string, accessExpiry, magicLinkExpiry time.Duration) *Service {
	return &Service{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
		magicLinkExpiry:   magicLinkExpiry,
	}
}

// GenerateAccessToken generates a session token for a user or staff member
func (s *Service) GenerateAccessToken(actorID int64, actorType ActorType, roleName string) (string, error) {
	return s.generate(actorID, actorType, roleName, AccessToken, s.accessTokenExpiry)
}

// GenerateSetPasswordToken generates the short-lived magic-link token sent
// to auto-created accounts so the guest can pick a password
func (s *Service) GenerateSetPasswordToken(userID int64) (string, error) {
	return s.generate(userID, ActorUser, "", SetPasswordTok, s.magicLinkExpiry)
}

func (s *Service) generate(actorID int64, actorType ActorType, roleName string, tokenType TokenType, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ActorID:   actorID,
		ActorType: actorType,
		RoleName:  roleName,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "insiderbookings-backoffice",
			Subject:   strconv.FormatInt(actorID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates and parses a session token
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, AccessToken)
}

// ValidateSetPasswordToken validates and parses a magic-link token
func (s *Service) ValidateSetPasswordToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, SetPasswordTok)
}

func (s *Service) validateToken(tokenString string, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}

	return claims, nil
}
