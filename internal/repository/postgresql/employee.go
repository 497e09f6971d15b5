package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT payload
		FROM employee_records
		ORDER BY seq
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(&emp); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	var emp employee.Employee
	err := q.QueryRow(ctx, `SELECT payload FROM employee_records WHERE id = $1`, id).Scan(&emp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}

	return emp, nil
}

// UpsertMany implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpsertMany(ctx context.Context, employees []employee.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employee_records (id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, emp := range employees {
		batch.Queue(query, emp.ID, emp)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for _, emp := range employees {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert employee %s: %w", emp.ID, err)
		}
	}

	return results.Close()
}

// Delete implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

// ListTombstones implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListTombstones(ctx context.Context) (employee.Tombstones, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT id FROM employee_tombstones`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tombstones: %w", err)
	}

	tombstones := make(employee.Tombstones, len(ids))
	for _, id := range ids {
		tombstones[id] = struct{}{}
	}
	return tombstones, nil
}

// AddTombstone implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) AddTombstone(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employee_tombstones (id, deleted_at)
		VALUES ($1, NOW())
		ON CONFLICT (id) DO UPDATE SET deleted_at = NOW()
	`
	if _, err := q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to add tombstone %s: %w", id, err)
	}

	return nil
}

// RemoveTombstones implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) RemoveTombstones(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, e.db)

	if _, err := q.Exec(ctx, `DELETE FROM employee_tombstones WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to remove tombstones: %w", err)
	}

	return nil
}
