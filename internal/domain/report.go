package domain

import (
	"math"
	"strings"
	"time"
)

// FilterAll is the sentinel that disables the service type or zone constraint
const FilterAll = "all"

// ReportFilter describes the reporting window and constraints
type ReportFilter struct {
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
	ServiceType string `json:"service_type"`
	Zone        string `json:"zone"`
}

// DefaultFilter covers the last windowDays days up to and including today
func DefaultFilter(now time.Time, windowDays int) ReportFilter {
	today := NewDate(now)
	return ReportFilter{
		StartDate:   today.AddDays(-windowDays),
		EndDate:     today,
		ServiceType: FilterAll,
		Zone:        FilterAll,
	}
}

// Normalize fills empty constraints with the "all" sentinel
func (f ReportFilter) Normalize() ReportFilter {
	if strings.TrimSpace(f.ServiceType) == "" {
		f.ServiceType = FilterAll
	}
	if strings.TrimSpace(f.Zone) == "" {
		f.Zone = FilterAll
	}
	return f
}

// TechnicianMetric is the per-technician rollup of filtered work orders
type TechnicianMetric struct {
	TechnicianID      string  `json:"technician_id"`
	TechnicianName    string  `json:"technician_name"`
	Zone              string  `json:"zone"`
	Specialty         string  `json:"specialty"`
	TotalOrders       int     `json:"total_orders"`
	CompletedOrders   int     `json:"completed_orders"`
	InProgressOrders  int     `json:"in_progress_orders"`
	AvgResolutionTime float64 `json:"avg_resolution_time"`
}

// ReportSummary holds whole-report totals
type ReportSummary struct {
	TotalOrders       int     `json:"total_orders"`
	TotalCompleted    int     `json:"total_completed"`
	TotalInProgress   int     `json:"total_in_progress"`
	AvgResolutionTime float64 `json:"avg_resolution_time"`
}

// ChartPoint is a labelled value for the dashboard charts
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Snapshot is the metric list and summary produced by one aggregation run
type Snapshot struct {
	Filters            ReportFilter       `json:"filters"`
	Metrics            []TechnicianMetric `json:"metrics"`
	Summary            ReportSummary      `json:"summary"`
	OrdersByTechnician []ChartPoint       `json:"orders_by_technician"`
	OrdersByZone       []ChartPoint       `json:"orders_by_zone"`
	Options            Options            `json:"options"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// SavedReport represents a persisted snapshot
type SavedReport struct {
	ReportID      string             `json:"report_id"`
	ReportName    string             `json:"report_name"`
	Filters       ReportFilter       `json:"filters"`
	Metrics       []TechnicianMetric `json:"metrics"`
	Summary       ReportSummary      `json:"summary"`
	CreatedAt     time.Time          `json:"created_at"`
	CreatedByName string             `json:"created_by_name"`
}

// ReportDraft is what gets submitted to the report store on save
type ReportDraft struct {
	ReportName    string             `json:"report_name"`
	Filters       ReportFilter       `json:"filters"`
	Metrics       []TechnicianMetric `json:"metrics"`
	Summary       ReportSummary      `json:"summary"`
	CreatedByName string             `json:"created_by_name"`
}

// NewReportDraft validates the name and copies the snapshot so later
// recomputation cannot alter what was submitted
func NewReportDraft(name string, filters ReportFilter, metrics []TechnicianMetric, summary ReportSummary, createdBy string) (*ReportDraft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrReportNameRequired
	}
	copied := make([]TechnicianMetric, len(metrics))
	copy(copied, metrics)
	return &ReportDraft{
		ReportName:    name,
		Filters:       filters,
		Metrics:       copied,
		Summary:       summary,
		CreatedByName: createdBy,
	}, nil
}

// HistoryPage is one page of saved reports, most recent first
type HistoryPage struct {
	Reports  []SavedReport `json:"reports"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// PageOffset returns the number of rows before page. It reports false when
// the offset does not fit in an int, which callers treat as past the end.
func PageOffset(page, pageSize int) (int, bool) {
	if page < 1 || pageSize < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
