package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fixora/fieldreports/internal/domain"
)

var seedNamespace = uuid.MustParse("6a3f3c1e-2b7d-4d8e-9c41-5f0e7a1b2c3d")

var demoTechnicians = []struct {
	name, zone, specialty string
}{
	{"Ana Ruiz", "Norte", "Climatización"},
	{"Luis Gómez", "Sur", "Electricidad"},
	{"María Torres", "Centro", "Fontanería"},
	{"Carlos Méndez", "Norte", "Electricidad"},
	{"Lucía Fernández", "Este", "Climatización"},
	{"Jorge Herrera", "Oeste", "Fontanería"},
	{"Sofía Castro", "Centro", "Electricidad"},
	{"Pedro Navarro", "Sur", "Climatización"},
}

// DemoDataset builds a deterministic dataset of technicians and work orders
// spread over the days days before today. Ids are stable across runs.
func DemoDataset(now time.Time, days int) ([]domain.Technician, []domain.WorkOrder) {
	technicians := make([]domain.Technician, 0, len(demoTechnicians))
	for _, t := range demoTechnicians {
		technicians = append(technicians, domain.Technician{
			ID:        uuid.NewSHA1(seedNamespace, []byte("technician:"+t.name)).String(),
			Name:      t.name,
			Zone:      t.zone,
			Specialty: t.specialty,
		})
	}

	statuses := []domain.WorkOrderStatus{
		domain.WorkOrderStatusCompleted,
		domain.WorkOrderStatusInProgress,
		domain.WorkOrderStatusCompleted,
		domain.WorkOrderStatusAssigned,
		domain.WorkOrderStatusPending,
		domain.WorkOrderStatusCompleted,
		domain.WorkOrderStatusCancelled,
	}

	start := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	var orders []domain.WorkOrder
	n := 0
	for d := 0; d < days; d++ {
		for k := 0; k < 3; k++ {
			n++
			tech := technicians[(d*3+k)%len(technicians)]
			status := statuses[n%len(statuses)]
			created := start.AddDate(0, 0, d).Add(time.Duration(8+k*3) * time.Hour)

			o := domain.WorkOrder{
				ID:        uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("work_order:%d", n))).String(),
				CreatedAt: created,
				Specialty: tech.Specialty,
				Zone:      tech.Zone,
				Status:    status,
			}
			if status != domain.WorkOrderStatusPending {
				assigned := created.Add(time.Duration(1+n%4) * time.Hour)
				o.AssignedTechnicianID = tech.ID
				o.AssignedAt = &assigned
			}
			if status == domain.WorkOrderStatusCompleted {
				completed := o.AssignedAt.Add(time.Duration(6+(n*7)%90) * time.Hour)
				if completed.After(now) {
					completed = now
				}
				o.CompletedAt = &completed
			}
			orders = append(orders, o)
		}
	}
	return technicians, orders
}

// Seed upserts technicians and work orders in one transaction
func Seed(ctx context.Context, db *sql.DB, technicians []domain.Technician, orders []domain.WorkOrder) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range technicians {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO technicians (id, name, zone, specialty)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, zone = EXCLUDED.zone, specialty = EXCLUDED.specialty
		`, t.ID, t.Name, t.Zone, t.Specialty)
		if err != nil {
			return fmt.Errorf("failed to seed technician %s: %w", t.ID, err)
		}
	}

	for _, o := range orders {
		var assignedTo *string
		if o.IsAssigned() {
			assignedTo = &o.AssignedTechnicianID
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_orders (id, created_at, specialty, zone, status, assigned_technician_id, assigned_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				created_at = EXCLUDED.created_at,
				specialty = EXCLUDED.specialty,
				zone = EXCLUDED.zone,
				status = EXCLUDED.status,
				assigned_technician_id = EXCLUDED.assigned_technician_id,
				assigned_at = EXCLUDED.assigned_at,
				completed_at = EXCLUDED.completed_at
		`, o.ID, o.CreatedAt, o.Specialty, o.Zone, string(o.Status), assignedTo, o.AssignedAt, o.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to seed work order %s: %w", o.ID, err)
		}
	}

	return tx.Commit()
}
