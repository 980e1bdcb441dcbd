package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/ports"
)

// PostgresDataSource reads technicians and work orders from PostgreSQL
type PostgresDataSource struct {
	db *sql.DB
}

// NewPostgresDataSource creates a new PostgreSQL data source
func NewPostgresDataSource(db *sql.DB) ports.DataSource {
	return &PostgresDataSource{db: db}
}

// GetTechnicians lists all technicians in a stable order
func (s *PostgresDataSource) GetTechnicians(ctx context.Context) ([]domain.Technician, error) {
	query := `
		SELECT id, name, zone, specialty
		FROM technicians
		ORDER BY name ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query technicians: %w", err)
	}
	defer rows.Close()

	technicians := []domain.Technician{}
	for rows.Next() {
		var t domain.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.Zone, &t.Specialty); err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		technicians = append(technicians, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate technicians: %w", err)
	}

	return technicians, nil
}

// GetWorkOrders lists all work orders, oldest first
func (s *PostgresDataSource) GetWorkOrders(ctx context.Context) ([]domain.WorkOrder, error) {
	query := `
		SELECT id, created_at, specialty, zone, status, assigned_technician_id, assigned_at, completed_at
		FROM work_orders
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query work orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.WorkOrder{}
	for rows.Next() {
		var o domain.WorkOrder
		var assignedTo sql.NullString
		var assignedAt, completedAt sql.NullTime

		err := rows.Scan(
			&o.ID,
			&o.CreatedAt,
			&o.Specialty,
			&o.Zone,
			&o.Status,
			&assignedTo,
			&assignedAt,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}

		if assignedTo.Valid {
			o.AssignedTechnicianID = assignedTo.String
		}
		if assignedAt.Valid {
			t := assignedAt.Time
			o.AssignedAt = &t
		}
		if completedAt.Valid {
			t := completedAt.Time
			o.CompletedAt = &t
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work orders: %w", err)
	}

	return orders, nil
}
