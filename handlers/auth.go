package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"

	"github.com/gin-gonic/gin"
)

// UserStore is the member directory the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u models.User, role string) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Roles(ctx context.Context, id int) ([]string, error)
}

type AuthHandler struct {
	users        UserStore
	tokenService *middleware.TokenService
}

func NewAuthHandler(users UserStore, tokenService *middleware.TokenService) *AuthHandler {
	return &AuthHandler{
		users:        users,
		tokenService: tokenService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := middleware.HashPassword(req.Password)
	if err != nil {
		log.Printf("[%s] Error hashing password: %v", middleware.RequestIDFrom(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hashedPassword,
	}, models.RoleUser)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}

	tokens, err := h.tokenService.GenerateTokens(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusCreated, tokens)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, apperrors.ErrNotFound) || (err == nil && !middleware.VerifyPassword(user.PasswordHash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	} else if err != nil {
		respondError(c, err, "Failed to verify credentials")
		return
	}

	tokens, err := h.tokenService.GenerateTokens(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.tokenService.ValidateRefreshToken(c.Request.Context(), req.RefreshToken)
	if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	} else if err != nil {
		respondError(c, err, "Failed to validate refresh token")
		return
	}

	tokens, err := h.tokenService.GenerateTokens(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to generate tokens")
		return
	}

	if err := h.tokenService.InvalidateRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		log.Printf("[%s] Error invalidating old refresh token: %v", middleware.RequestIDFrom(c), err)
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokenService.InvalidateRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// GetUserInfo returns the caller's profile and roles.
func (h *AuthHandler) GetUserInfo(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch user info")
		return
	}

	roles := c.GetStringSlice(middleware.ContextRoles)
	if roles == nil {
		roles = []string{}
	}

	c.JSON(http.StatusOK, models.UserProfile{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		CreatedAt: user.CreatedAt,
		Roles:     roles,
	})
}
