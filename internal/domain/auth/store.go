package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"leaveportal/internal/platform/querier"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID           string
	EmployeeID   string
	Email        string
	Role         Role
	PasswordHash string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT u.id::text, COALESCE(e.id, ''), u.email, u.role, u.password_hash
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE lower(u.email) = lower($1) AND u.is_active
  `, email).Scan(&out.ID, &out.EmployeeID, &out.Email, &role, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	if err != nil {
		return AuthUser{}, err
	}
	out.Role = ParseRole(role)
	return out, nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (AuthUser, error) {
	var out AuthUser
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT u.id::text, COALESCE(e.id, ''), u.email, u.role, u.password_hash
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE u.id::text = $1 AND u.is_active
  `, userID).Scan(&out.ID, &out.EmployeeID, &out.Email, &role, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	if err != nil {
		return AuthUser{}, err
	}
	out.Role = ParseRole(role)
	return out, nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id::text = $2", hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
