package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/platform/config"
	"leaveportal/internal/platform/querier"
)

// Seed creates the first admin account and its employee profile when a seed
// email and password are configured. Existing rows are left untouched.
func Seed(ctx context.Context, db querier.Querier, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	userID, err := ensureAdminUser(ctx, db, email, cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if err := ensureAdminEmployee(ctx, db, cfg.SeedAdminID, userID); err != nil {
		return fmt.Errorf("seed admin employee: %w", err)
	}
	return nil
}

func ensureAdminUser(ctx context.Context, db querier.Querier, email, password string) (string, error) {
	var id string
	err := db.QueryRow(ctx, "SELECT id::text FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	err = db.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, $3)
    RETURNING id::text
  `, email, hash, string(auth.RoleAdmin)).Scan(&id)
	return id, err
}

func ensureAdminEmployee(ctx context.Context, db querier.Querier, employeeID, userID string) error {
	if strings.TrimSpace(employeeID) == "" {
		return nil
	}
	_, err := db.Exec(ctx, `
    INSERT INTO employees (id, user_id, first_name_ar, last_name_ar, first_name_en, last_name_en, start_date)
    VALUES ($1, $2::uuid, 'مدير', 'النظام', 'System', 'Admin', CURRENT_DATE)
    ON CONFLICT (id) DO NOTHING
  `, employeeID, userID)
	return err
}
