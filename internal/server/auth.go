package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// APIKeyHeader carries the shared API key sent by the dashboard
const APIKeyHeader = "X-API-Key"

const tokenIssuer = "hivedeck-monitor"

// JWTClaims represents the claims in a JWT token
type JWTClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// AuthService handles authentication
type AuthService struct {
	apiKey    string
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(apiKey, jwtSecret string) *AuthService {
	return &AuthService{
		apiKey:    apiKey,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// ValidateAPIKey validates an API key
func (a *AuthService) ValidateAPIKey(key string) bool {
	return key != "" && key == a.apiKey
}

// GenerateToken generates a new JWT token
func (a *AuthService) GenerateToken(role string, duration time.Duration) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(duration)

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateToken validates a JWT token
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ExtractToken extracts the credential from X-API-Key, Authorization or ?token=
func ExtractToken(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		// Bearer token
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		// Raw token
		return authHeader
	}

	// Check query parameter
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}
