package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"consultdesk/internal/logger"
	"consultdesk/internal/middleware"
	"consultdesk/internal/models"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	db   *sql.DB
	auth *middleware.Auth
}

func NewAuthHandler(conn *sql.DB, auth *middleware.Auth) *AuthHandler {
	return &AuthHandler{db: conn, auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := models.GetUserByEmail(r.Context(), h.db, email)
	if err != nil {
		if !models.IsNotFound(err) {
			writeError(w, r, err)
			return
		}
		logger.Info("Login failed: unknown email", "email", email)
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Info("Login failed: wrong password", "email", email)
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, claims, err := h.auth.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("Login succeeded", "email", user.Email, "role", user.Role)
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"token":     token,
		"role":      user.Role,
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.auth.Revoke(r.Context(), middleware.GetClaims(r)); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.GetUserUUID(r)
	if !userID.Valid {
		jsonError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := models.GetUserByID(r.Context(), h.db, userID.UUID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      user.ID.String(),
		"email":   user.Email,
		"name":    user.FullName,
		"role":    user.Role,
		"isAdmin": IsAdmin(r),
	})
}
