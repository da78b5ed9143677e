package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"leaveportal/internal/domain/auth"
	"leaveportal/internal/platform/querier"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnitInUse    = errors.New("unit has assigned employees")
	ErrAlreadySetUp = errors.New("portal is already set up")
)

// isUniqueViolation matches the users email index and the employees key.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
    e.id,
    COALESCE(e.user_id::text, ''),
    e.first_name_ar, e.last_name_ar, e.first_name_en, e.last_name_en,
    COALESCE(e.position_ar, ''), COALESCE(e.position_en, ''),
    e.unit_id,
    e.manager_id,
    COALESCE(u.role, 'employee'),
    COALESCE(u.email, ''),
    e.start_date,
    e.monthly_vacation_earned`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var role string
	var startDate *time.Time
	err := row.Scan(
		&emp.ID, &emp.UserID,
		&emp.FirstNameAR, &emp.LastNameAR, &emp.FirstNameEN, &emp.LastNameEN,
		&emp.PositionAR, &emp.PositionEN,
		&emp.UnitID, &emp.ManagerID, &role, &emp.Email,
		&startDate, &emp.MonthlyVacationEarned,
	)
	if err != nil {
		return Employee{}, err
	}
	emp.Role = auth.ParseRole(role)
	emp.StartDate = startDate
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN users u ON u.id = e.user_id
    ORDER BY e.id
  `)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN users u ON u.id = e.user_id
    WHERE e.id = $1
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, fmt.Errorf("get employee %s: %w", employeeID, err)
	}
	return emp, nil
}

func (s *Store) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name_en, name_ar FROM units ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	units := []Unit{}
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.NameEN, &u.NameAR); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// CreateEmployee inserts the login and the employee record in one statement so
// neither exists without the other.
func (s *Store) CreateEmployee(ctx context.Context, emp Employee, passwordHash string) (Employee, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    WITH new_user AS (
      INSERT INTO users (email, password_hash, role)
      VALUES ($1, $2, $3)
      RETURNING id
    )
    INSERT INTO employees (
      id, user_id, first_name_ar, last_name_ar, first_name_en, last_name_en,
      position_ar, position_en, unit_id, manager_id, start_date, monthly_vacation_earned
    )
    SELECT $4, new_user.id, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
    FROM new_user
    RETURNING id
  `,
		emp.Email, passwordHash, string(emp.Role),
		emp.ID, emp.FirstNameAR, emp.LastNameAR, emp.FirstNameEN, emp.LastNameEN,
		emp.PositionAR, emp.PositionEN, emp.UnitID, emp.ManagerID, emp.StartDate, emp.MonthlyVacationEarned,
	).Scan(&id)
	if isUniqueViolation(err) {
		return Employee{}, ErrConflict
	}
	if err != nil {
		return Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return s.GetEmployee(ctx, id)
}

// UpdateEmployee writes every editable field of emp; the role lives on the
// linked login.
func (s *Store) UpdateEmployee(ctx context.Context, emp Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET
      first_name_ar = $2, last_name_ar = $3, first_name_en = $4, last_name_en = $5,
      position_ar = $6, position_en = $7, unit_id = $8, manager_id = $9,
      start_date = $10, monthly_vacation_earned = $11
    WHERE id = $1
  `,
		emp.ID, emp.FirstNameAR, emp.LastNameAR, emp.FirstNameEN, emp.LastNameEN,
		emp.PositionAR, emp.PositionEN, emp.UnitID, emp.ManagerID,
		emp.StartDate, emp.MonthlyVacationEarned,
	)
	if err != nil {
		return fmt.Errorf("update employee %s: %w", emp.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if emp.UserID == "" {
		return nil
	}
	if _, err := s.DB.Exec(ctx, "UPDATE users SET role = $2 WHERE id::text = $1", emp.UserID, string(emp.Role)); err != nil {
		return fmt.Errorf("update role of %s: %w", emp.ID, err)
	}
	return nil
}

// DeleteUser removes a login together with its employee record and, through
// the foreign key, that employee's leave requests.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    WITH removed AS (
      DELETE FROM employees WHERE user_id::text = $1
    )
    DELETE FROM users WHERE id::text = $1
  `, userID)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateUnit(ctx context.Context, unit Unit) (Unit, error) {
	err := s.DB.QueryRow(ctx,
		"INSERT INTO units (name_en, name_ar) VALUES ($1, $2) RETURNING id",
		unit.NameEN, unit.NameAR,
	).Scan(&unit.ID)
	if err != nil {
		return Unit{}, fmt.Errorf("create unit: %w", err)
	}
	return unit, nil
}

func (s *Store) UpdateUnit(ctx context.Context, unit Unit) error {
	tag, err := s.DB.Exec(ctx, "UPDATE units SET name_en = $2, name_ar = $3 WHERE id = $1", unit.ID, unit.NameEN, unit.NameAR)
	if err != nil {
		return fmt.Errorf("update unit %d: %w", unit.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUnit refuses to drop a unit that still has employees assigned.
func (s *Store) DeleteUnit(ctx context.Context, unitID int) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM units
    WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM employees WHERE unit_id = $1)
  `, unitID)
	if err != nil {
		return fmt.Errorf("delete unit %d: %w", unitID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM units WHERE id = $1)", unitID).Scan(&exists); err != nil {
		return fmt.Errorf("check unit %d: %w", unitID, err)
	}
	if exists {
		return ErrUnitInUse
	}
	return ErrNotFound
}

func (s *Store) UserCount(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Initialize creates the first administrator. It only succeeds while the users
// table is empty, so two racing setup calls cannot both win.
func (s *Store) Initialize(ctx context.Context, admin Employee, passwordHash string) (Employee, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    WITH new_user AS (
      INSERT INTO users (email, password_hash, role)
      SELECT $1, $2, 'admin'
      WHERE NOT EXISTS (SELECT 1 FROM users)
      RETURNING id
    )
    INSERT INTO employees (
      id, user_id, first_name_ar, last_name_ar, first_name_en, last_name_en,
      position_ar, position_en, start_date
    )
    SELECT $3, new_user.id, $4, $5, $6, $7, $8, $9, $10
    FROM new_user
    RETURNING id
  `,
		admin.Email, passwordHash,
		admin.ID, admin.FirstNameAR, admin.LastNameAR, admin.FirstNameEN, admin.LastNameEN,
		admin.PositionAR, admin.PositionEN, admin.StartDate,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrAlreadySetUp
	}
	if isUniqueViolation(err) {
		return Employee{}, ErrAlreadySetUp
	}
	if err != nil {
		return Employee{}, fmt.Errorf("initialize: %w", err)
	}
	return s.GetEmployee(ctx, id)
}
