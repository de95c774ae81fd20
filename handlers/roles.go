package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"

	"github.com/gin-gonic/gin"
)

// RoleStore manages role grants.
type RoleStore interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	AssignRole(ctx context.Context, userID int, role string) error
}

type RoleHandler struct {
	roles RoleStore
}

func NewRoleHandler(roles RoleStore) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// GetRoles handles retrieving all roles
func (h *RoleHandler) GetRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch roles")
		return
	}

	c.JSON(http.StatusOK, roles)
}

// AssignRole grants a role to the member in the path, e.g. promoting them to Admin.
func (h *RoleHandler) AssignRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := strings.TrimSpace(req.Role)

	if err := h.roles.AssignRole(c.Request.Context(), userID, role); err != nil {
		respondError(c, err, "Failed to assign role")
		return
	}

	adminID, _ := middleware.CurrentUserID(c)
	log.Printf("[%s] member %d granted role %s to member %d", middleware.RequestIDFrom(c), adminID, role, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Role assigned", "user_id": userID, "role": role})
}
