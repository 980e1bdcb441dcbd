package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/ports"
)

type memoryRecord struct {
	seq    int
	report domain.SavedReport
}

// MemoryReportRepository keeps saved reports in process memory
type MemoryReportRepository struct {
	mu      sync.RWMutex
	seq     int
	records map[string]memoryRecord
	now     func() time.Time
}

// NewMemoryReportRepository creates an empty in-memory report repository
func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

var _ ports.ReportRepository = (*MemoryReportRepository)(nil)

func (r *MemoryReportRepository) Save(ctx context.Context, draft *domain.ReportDraft) (*domain.SavedReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	report := domain.SavedReport{
		ReportID:      uuid.New().String(),
		ReportName:    draft.ReportName,
		Filters:       draft.Filters,
		Metrics:       cloneMetrics(draft.Metrics),
		Summary:       draft.Summary,
		CreatedAt:     r.now().UTC(),
		CreatedByName: draft.CreatedByName,
	}
	r.records[report.ReportID] = memoryRecord{seq: r.seq, report: report}

	out := report
	out.Metrics = cloneMetrics(report.Metrics)
	return &out, nil
}

func (r *MemoryReportRepository) History(ctx context.Context, page, pageSize int) ([]domain.SavedReport, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, domain.ErrInvalidPagination
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]memoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.report.CreatedAt.Equal(b.report.CreatedAt) {
			return a.report.CreatedAt.After(b.report.CreatedAt)
		}
		return a.seq > b.seq
	})

	reports := []domain.SavedReport{}
	start, ok := domain.PageOffset(page, pageSize)
	if ok && start < len(records) {
		end := start + pageSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			report := rec.report
			report.Metrics = cloneMetrics(report.Metrics)
			reports = append(reports, report)
		}
	}
	return reports, len(records), nil
}

func (r *MemoryReportRepository) FindByID(ctx context.Context, id string) (*domain.SavedReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	report := rec.report
	report.Metrics = cloneMetrics(report.Metrics)
	return &report, nil
}

func (r *MemoryReportRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return domain.ErrReportNotFound
	}
	delete(r.records, id)
	return nil
}

func cloneMetrics(metrics []domain.TechnicianMetric) []domain.TechnicianMetric {
	out := make([]domain.TechnicianMetric, len(metrics))
	copy(out, metrics)
	return out
}
