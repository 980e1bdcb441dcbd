package ports

import (
	"context"

	"github.com/fixora/fieldreports/internal/domain"
)

// DataSource supplies the raw inputs of a report
type DataSource interface {
	// GetTechnicians returns every technician in display order
	GetTechnicians(ctx context.Context) ([]domain.Technician, error)

	// GetWorkOrders returns every work order
	GetWorkOrders(ctx context.Context) ([]domain.WorkOrder, error)
}

// ReportRepository defines the interface for saved report persistence
type ReportRepository interface {
	// Save persists the draft and returns the stored record with its
	// assigned id and creation time
	Save(ctx context.Context, draft *domain.ReportDraft) (*domain.SavedReport, error)

	// History returns a page of saved reports, most recent first, and the
	// total number of saved reports
	History(ctx context.Context, page, pageSize int) ([]domain.SavedReport, int, error)

	// FindByID retrieves a saved report, domain.ErrReportNotFound when missing
	FindByID(ctx context.Context, id string) (*domain.SavedReport, error)

	// Delete removes a saved report, domain.ErrReportNotFound when missing
	Delete(ctx context.Context, id string) error
}
