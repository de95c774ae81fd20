package middleware

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Keys set on the gin context by the auth middleware.
const (
	ContextUserID = "userID"
	ContextRoles  = "userRoles"
	ContextToken  = "token"
)

// RoleLookup resolves the roles granted to a member.
type RoleLookup interface {
	Roles(ctx context.Context, userID int) ([]string, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens *TokenService, roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if authenticate(c, tokens, roles) {
			c.Next()
		}
	}
}

// OptionalAuth identifies the caller when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalAuth(tokens *TokenService, roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if authenticate(c, tokens, roles) {
			c.Next()
		}
	}
}

// RequireRole allows only authenticated members holding role. It must run
// after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !HasRole(c, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("Only %s members can perform this action", role)})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated member id, if any.
func CurrentUserID(c *gin.Context) (int, bool) {
	id := c.GetInt(ContextUserID)
	return id, id > 0
}

func HasRole(c *gin.Context, role string) bool {
	return slices.Contains(c.GetStringSlice(ContextRoles), role)
}

func authenticate(c *gin.Context, tokens *TokenService, roles RoleLookup) bool {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be in the format: Bearer {token}"})
		return false
	}

	tokenString := parts[1]
	claims, err := tokens.ParseAccessToken(tokenString)
	if err != nil {
		log.Printf("[%s] Token validation error: %v", RequestIDFrom(c), err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return false
	}

	userRoles, err := roles.Roles(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("[%s] Error getting user roles: %v", RequestIDFrom(c), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user roles"})
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRoles, userRoles)
	c.Set(ContextToken, tokenString)
	return true
}

// TokenService handles token generation and validation
type TokenService struct {
	DB         *sql.DB
	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewTokenService creates a new token service
func NewTokenService(db *sql.DB, jwtSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		DB:         db,
		JWTSecret:  jwtSecret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// GenerateAccessToken signs a short-lived JWT carrying the user id.
func (s *TokenService) GenerateAccessToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(s.JWTSecret)
}

// ParseAccessToken validates the signature and expiry of an access token.
func (s *TokenService) ParseAccessToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateTokens creates a new access and refresh token pair
func (s *TokenService) GenerateTokens(ctx context.Context, userID int) (models.TokenPair, error) {
	accessToken, err := s.GenerateAccessToken(userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error signing access token: %w", err)
	}

	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return models.TokenPair{}, err
	}
	refreshToken := hex.EncodeToString(bytes)

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, refreshToken, time.Now().Add(s.RefreshTTL),
	); err != nil {
		return models.TokenPair{}, fmt.Errorf("error storing refresh token: %w", err)
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateRefreshToken checks if a refresh token is valid and returns the user ID
func (s *TokenService) ValidateRefreshToken(ctx context.Context, refreshToken string) (int, error) {
	var userID int
	err := s.DB.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens WHERE token = $1 AND expires_at > NOW()`,
		refreshToken,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("refresh token: %w", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return 0, err
	}

	return userID, nil
}

// InvalidateRefreshToken invalidates a refresh token
func (s *TokenService) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, refreshToken)
	return err
}

// VerifyPassword checks if a password matches the hashed version
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// HashPassword creates a bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
