package models

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// DefaultRoles are created by the seeder.
var DefaultRoles = []string{RoleUser, RoleAdmin}

type Role struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,notblank"`
}
