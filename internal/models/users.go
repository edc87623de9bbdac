package models

import (
	"context"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func GetUserByEmail(ctx context.Context, q db.Querier, email string) (*User, error) {
	user := &User{}
	err := q.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, full_name, created_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.FullName, &user.CreatedAt)
	if err != nil {
		return nil, Classify("get user", err)
	}
	return user, nil
}

func GetUserByID(ctx context.Context, q db.Querier, id uuid.UUID) (*User, error) {
	user := &User{}
	err := q.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, full_name, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.FullName, &user.CreatedAt)
	if err != nil {
		return nil, Classify("get user", err)
	}
	return user, nil
}

func CreateUser(ctx context.Context, q db.Querier, email, passwordHash, role, fullName string) (*User, error) {
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FullName:     fullName,
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, full_name, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING created_at
	`, user.ID, email, passwordHash, role, fullName).Scan(&user.CreatedAt)
	if err != nil {
		return nil, Classify("create user", err)
	}
	return user, nil
}
