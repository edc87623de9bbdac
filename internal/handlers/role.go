package handlers

import (
	"net/http"

	"consultdesk/internal/middleware"
	"consultdesk/internal/models"
)

// Route groups by who may call them.
var (
	allStaff      = []string{models.RoleAdmin, models.RoleCounselor, models.RoleFrontDesk}
	adminOnly     = []string{models.RoleAdmin}
	adminCounsel  = []string{models.RoleAdmin, models.RoleCounselor}
	adminFrontDsk = []string{models.RoleAdmin, models.RoleFrontDesk}
)

// IsAdmin returns true if the current user has the admin role.
func IsAdmin(r *http.Request) bool {
	return middleware.GetUserRole(r) == models.RoleAdmin
}
