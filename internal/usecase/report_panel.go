package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/export"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
)

// PanelConfig tunes a report panel
type PanelConfig struct {
	Location          *time.Location
	DefaultWindowDays int
	TopTechnicians    int
	Now               func() time.Time
}

// ReportPanel drives the report view of one session: it loads the dataset,
// tracks the active filters, recomputes the snapshot on demand, and hands
// the snapshot to the store or the exporter.
type ReportPanel struct {
	session  domain.Session
	source   ports.DataSource
	store    *SnapshotStore
	notifier ports.NotificationService
	logger   logger.Logger
	config   PanelConfig

	mu        sync.Mutex
	issued    uint64
	committed uint64
	dataset   *domain.Dataset
	filters   domain.ReportFilter
	snapshot  *domain.Snapshot
}

// NewReportPanel creates a panel whose filters start at the default window
func NewReportPanel(
	session domain.Session,
	source ports.DataSource,
	store *SnapshotStore,
	notifier ports.NotificationService,
	log logger.Logger,
	config PanelConfig,
) *ReportPanel {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.TopTechnicians <= 0 {
		config.TopTechnicians = 10
	}
	return &ReportPanel{
		session:  session,
		source:   source,
		store:    store,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "report_panel", "user_id": session.UserID}),
		config:   config,
		filters:  domain.DefaultFilter(config.Now().In(config.Location), config.DefaultWindowDays),
	}
}

// Load fetches technicians and work orders concurrently and recomputes the
// snapshot once both have arrived. When either fetch fails the previous
// dataset is kept. A load that finishes after a newer one has been committed
// is discarded.
func (p *ReportPanel) Load(ctx context.Context) (*domain.Snapshot, error) {
	p.mu.Lock()
	p.issued++
	generation := p.issued
	p.mu.Unlock()

	start := time.Now()
	var (
		technicians []domain.Technician
		orders      []domain.WorkOrder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		technicians, err = p.source.GetTechnicians(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = p.source.GetWorkOrders(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		p.mu.Lock()
		if generation <= p.committed {
			defer p.mu.Unlock()
			p.logger.Debug(ctx, "Discarding superseded failed load", map[string]interface{}{
				"generation": generation,
				"committed":  p.committed,
				"error":      err.Error(),
			})
			return p.currentLocked()
		}
		p.mu.Unlock()

		p.logger.Error(ctx, "Failed to load report data", err, nil)
		notify(ctx, p.notifier, p.logger, ports.NewNotification(
			ports.NotificationTypeDataLoaded, ports.NotificationLevelError, p.session.UserID,
			"Error loading data", "The report data could not be loaded",
		))
		return nil, domain.NewLoadError(err)
	}

	logger.LogPerformance(ctx, p.logger, "load_report_data", time.Since(start), map[string]interface{}{
		"technicians": len(technicians),
		"work_orders": len(orders),
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation <= p.committed {
		p.logger.Debug(ctx, "Discarding superseded load", map[string]interface{}{
			"generation": generation,
			"committed":  p.committed,
		})
		return p.currentLocked()
	}

	p.committed = generation
	p.dataset = &domain.Dataset{Technicians: technicians, WorkOrders: orders}
	return p.recomputeLocked(ctx), nil
}

// SetFilters replaces the active filters and recomputes the snapshot. The
// filters are kept even when no dataset has been loaded yet.
func (p *ReportPanel) SetFilters(ctx context.Context, f domain.ReportFilter) (*domain.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.filters = f.Normalize()
	if p.dataset == nil {
		return nil, domain.ErrDatasetNotLoaded
	}
	return p.recomputeLocked(ctx), nil
}

// Filters returns the active filters
func (p *ReportPanel) Filters() domain.ReportFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters
}

// Recompute rebuilds the snapshot from the loaded dataset and active filters
func (p *ReportPanel) Recompute(ctx context.Context) (*domain.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dataset == nil {
		return nil, domain.ErrDatasetNotLoaded
	}
	return p.recomputeLocked(ctx), nil
}

// Snapshot returns the last computed snapshot
func (p *ReportPanel) Snapshot() (*domain.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked()
}

// Save stores the current snapshot under name
func (p *ReportPanel) Save(ctx context.Context, name string) (*domain.SavedReport, error) {
	snap, err := p.Snapshot()
	if err != nil {
		if strings.TrimSpace(name) == "" {
			return nil, domain.ErrReportNameRequired
		}
		return nil, err
	}
	return p.store.Save(ctx, name, snap.Filters, snap.Metrics, snap.Summary)
}

// Export renders the current metric list as a CSV document
func (p *ReportPanel) Export(ctx context.Context) (*export.Document, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return nil, err
	}

	doc, err := export.Render(snap.Metrics, p.config.Now().In(p.config.Location))
	if err != nil {
		p.logger.Error(ctx, "Failed to render export", err, nil)
		return nil, err
	}

	notify(ctx, p.notifier, p.logger, ports.NewNotification(
		ports.NotificationTypeReportExport, ports.NotificationLevelInfo, p.session.UserID,
		"Report exported", "The report was downloaded as CSV",
	))
	return doc, nil
}

// Store returns the snapshot store bound to this panel's session
func (p *ReportPanel) Store() *SnapshotStore {
	return p.store
}

func (p *ReportPanel) recomputeLocked(ctx context.Context) *domain.Snapshot {
	start := time.Now()
	p.snapshot = domain.BuildSnapshot(*p.dataset, p.filters, domain.SnapshotOptions{
		Location:      p.config.Location,
		TopTechnician: p.config.TopTechnicians,
	}, p.config.Now())
	logger.LogPerformance(ctx, p.logger, "recompute_metrics", time.Since(start), map[string]interface{}{
		"metrics": len(p.snapshot.Metrics),
	})
	return p.snapshot
}

func (p *ReportPanel) currentLocked() (*domain.Snapshot, error) {
	if p.snapshot == nil {
		return nil, domain.ErrDatasetNotLoaded
	}
	return p.snapshot, nil
}
