package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/ports"
)

// invalid_text_representation, raised when an id is not a valid uuid
const pqInvalidTextRepresentation = "22P02"

// PostgresReportRepository implements ReportRepository using PostgreSQL
type PostgresReportRepository struct {
	db    *sql.DB
	newID func() string
}

// NewPostgresReportRepository creates a new PostgreSQL report repository
func NewPostgresReportRepository(db *sql.DB) ports.ReportRepository {
	return &PostgresReportRepository{db: db, newID: func() string { return uuid.New().String() }}
}

// Save inserts a saved report and returns it with its assigned id and timestamp
func (r *PostgresReportRepository) Save(ctx context.Context, draft *domain.ReportDraft) (*domain.SavedReport, error) {
	query := `
		INSERT INTO saved_reports (id, report_name, filters, metrics, summary, created_by_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	filtersJSON, err := json.Marshal(draft.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filters: %w", err)
	}
	metrics := draft.Metrics
	if metrics == nil {
		metrics = []domain.TechnicianMetric{}
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	summaryJSON, err := json.Marshal(draft.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	report := &domain.SavedReport{
		ReportID:      r.newID(),
		ReportName:    draft.ReportName,
		Filters:       draft.Filters,
		Metrics:       metrics,
		Summary:       draft.Summary,
		CreatedByName: draft.CreatedByName,
	}

	err = r.db.QueryRowContext(ctx, query,
		report.ReportID,
		report.ReportName,
		filtersJSON,
		metricsJSON,
		summaryJSON,
		report.CreatedByName,
	).Scan(&report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	return report, nil
}

// History returns one page of saved reports, most recent first, and the total count
func (r *PostgresReportRepository) History(ctx context.Context, page, pageSize int) ([]domain.SavedReport, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, domain.ErrInvalidPagination
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saved_reports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	offset, ok := domain.PageOffset(page, pageSize)
	if !ok {
		return []domain.SavedReport{}, total, nil
	}

	query := `
		SELECT id, report_name, filters, metrics, summary, created_by_name, created_at
		FROM saved_reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.SavedReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, total, nil
}

// FindByID retrieves a saved report by its ID
func (r *PostgresReportRepository) FindByID(ctx context.Context, id string) (*domain.SavedReport, error) {
	query := `
		SELECT id, report_name, filters, metrics, summary, created_by_name, created_at
		FROM saved_reports
		WHERE id = $1
	`

	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// Delete removes a saved report. Deleting an unknown id fails with ErrReportNotFound.
func (r *PostgresReportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_reports WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrReportNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*domain.SavedReport, error) {
	var report domain.SavedReport
	var filtersJSON, metricsJSON, summaryJSON []byte

	err := row.Scan(
		&report.ReportID,
		&report.ReportName,
		&filtersJSON,
		&metricsJSON,
		&summaryJSON,
		&report.CreatedByName,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if err := json.Unmarshal(filtersJSON, &report.Filters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filters: %w", err)
	}
	if err := json.Unmarshal(metricsJSON, &report.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if report.Metrics == nil {
		report.Metrics = []domain.TechnicianMetric{}
	}
	if err := json.Unmarshal(summaryJSON, &report.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &report, nil
}

func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation
}
