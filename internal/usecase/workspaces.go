package usecase

import (
	"sync"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
)

// Workspaces hands out one ReportPanel per session user
type Workspaces struct {
	source   ports.DataSource
	repo     ports.ReportRepository
	notifier ports.NotificationService
	logger   logger.Logger
	panel    PanelConfig
	paging   PageConfig

	mu     sync.Mutex
	panels map[string]*ReportPanel
}

// NewWorkspaces creates an empty panel registry
func NewWorkspaces(
	source ports.DataSource,
	repo ports.ReportRepository,
	notifier ports.NotificationService,
	log logger.Logger,
	panel PanelConfig,
	paging PageConfig,
) *Workspaces {
	return &Workspaces{
		source:   source,
		repo:     repo,
		notifier: notifier,
		logger:   log,
		panel:    panel,
		paging:   paging,
		panels:   make(map[string]*ReportPanel),
	}
}

// Panel returns the session's panel, creating it on first use. A returning
// user whose token carries updated claims keeps the panel under the new claims.
func (w *Workspaces) Panel(session domain.Session) (*ReportPanel, error) {
	if !session.Valid() {
		return nil, domain.NewValidationError("session is required")
	}
	if !session.CanViewReports() {
		return nil, domain.ErrReportsForbidden
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.panels[session.UserID]; ok {
		if p.store.Session() != session {
			p.store.rebind(session)
		}
		return p, nil
	}

	store := NewSnapshotStore(session, w.repo, w.notifier, w.logger, w.paging)
	p := NewReportPanel(session, w.source, store, w.notifier, w.logger, w.panel)
	w.panels[session.UserID] = p
	return p, nil
}

// Close drops the session's panel, as on logout
func (w *Workspaces) Close(session domain.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.panels, session.UserID)
}
