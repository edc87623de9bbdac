package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"consultdesk/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type contextKey string

const UserIDKey contextKey = "userID"
const UserEmailKey contextKey = "userEmail"
const UserRoleKey contextKey = "userRole"
const ClaimsKey contextKey = "claims"

// Claims is the JWT payload issued at login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and verifies HS256 bearer tokens.
type Auth struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewAuth(secret string, ttl time.Duration, revoker Revoker) *Auth {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &Auth{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

// IssueToken signs a token for the user that expires after the configured TTL.
func (a *Auth) IssueToken(userID uuid.UUID, email, role string) (string, *Claims, error) {
	now := a.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken verifies signature, expiry and revocation.
func (a *Auth) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errors.New("token has been revoked")
	}
	return claims, nil
}

// Revoke invalidates the token until it would have expired anyway.
func (a *Auth) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return a.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Authenticate requires a valid "Authorization: Bearer" token and stores the
// caller's identity in the request context.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSONError(w, http.StatusUnauthorized, "Missing token")
			return
		}
		if !strings.HasPrefix(header, "Bearer ") || len(header) < 8 {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := a.ParseToken(r.Context(), header[7:])
		if err != nil {
			logger.Debug("Rejected token", "path", r.URL.Path, "err", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
		ctx = context.WithValue(ctx, ClaimsKey, claims)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole authenticates the request and ensures the user has one of the
// allowed roles.
func (a *Auth) RequireRole(allowedRoles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			userRole := GetUserRole(r)
			for _, role := range allowedRoles {
				if userRole == role {
					next(w, r, ps)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
		})
	}
}

func GetUserID(r *http.Request) string {
	if val := r.Context().Value(UserIDKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetUserUUID returns the caller's id, or an invalid NullUUID when the request
// is unauthenticated.
func GetUserUUID(r *http.Request) uuid.NullUUID {
	id, err := uuid.Parse(GetUserID(r))
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

func GetUserEmail(r *http.Request) string {
	if val := r.Context().Value(UserEmailKey); val != nil {
		return val.(string)
	}
	return ""
}

func GetUserRole(r *http.Request) string {
	if val := r.Context().Value(UserRoleKey); val != nil {
		return val.(string)
	}
	return ""
}

func GetClaims(r *http.Request) *Claims {
	if val, ok := r.Context().Value(ClaimsKey).(*Claims); ok {
		return val
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}
