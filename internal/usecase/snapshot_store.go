package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
)

// PageConfig holds history pagination defaults
type PageConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// SnapshotStore saves, lists, fetches and deletes saved reports for one
// session. It keeps the last listed history page and the report last viewed.
type SnapshotStore struct {
	session  domain.Session
	repo     ports.ReportRepository
	notifier ports.NotificationService
	logger   logger.Logger
	paging   PageConfig

	mu       sync.RWMutex
	history  domain.HistoryPage
	lastPage int
	lastSize int
	viewed   *domain.SavedReport
}

// NewSnapshotStore creates a snapshot store bound to session
func NewSnapshotStore(
	session domain.Session,
	repo ports.ReportRepository,
	notifier ports.NotificationService,
	log logger.Logger,
	paging PageConfig,
) *SnapshotStore {
	if paging.DefaultPageSize <= 0 {
		paging.DefaultPageSize = 100
	}
	if paging.MaxPageSize <= 0 {
		paging.MaxPageSize = paging.DefaultPageSize
	}
	return &SnapshotStore{
		session:  session,
		repo:     repo,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "snapshot_store", "user_id": session.UserID}),
		paging:   paging,
		history:  domain.HistoryPage{Reports: []domain.SavedReport{}},
		lastPage: 1,
		lastSize: paging.DefaultPageSize,
	}
}

// Save persists a snapshot under name. A blank name is rejected before the
// repository is contacted, and a failed save leaves the cached history alone.
func (s *SnapshotStore) Save(
	ctx context.Context,
	name string,
	filters domain.ReportFilter,
	metrics []domain.TechnicianMetric,
	summary domain.ReportSummary,
) (*domain.SavedReport, error) {
	draft, err := domain.NewReportDraft(name, filters, metrics, summary, s.Session().DisplayName())
	if err != nil {
		s.notifyFailure(ctx, ports.NotificationTypeReportSaved, "Error", "Please enter a name for the report")
		return nil, err
	}

	saved, err := s.repo.Save(ctx, draft)
	if err != nil {
		s.logger.Error(ctx, "Failed to save report", err, map[string]interface{}{"report_name": draft.ReportName})
		s.notifyFailure(ctx, ports.NotificationTypeReportSaved, "Error", "The report could not be saved")
		return nil, domain.NewPersistenceError("save report", err)
	}

	s.logger.Info(ctx, "Report saved", map[string]interface{}{"report_id": saved.ReportID, "report_name": saved.ReportName})
	s.notifySuccess(ctx, ports.NotificationTypeReportSaved, "Report saved", "The report was saved successfully")
	s.refresh(ctx)
	return saved, nil
}

// List fetches a page of saved reports and caches it as the current history view
func (s *SnapshotStore) List(ctx context.Context, page, pageSize int) (*domain.HistoryPage, error) {
	page, pageSize = s.normalizePage(page, pageSize)

	reports, total, err := s.repo.History(ctx, page, pageSize)
	if err != nil {
		s.logger.Error(ctx, "Failed to load report history", err, map[string]interface{}{"page": page, "page_size": pageSize})
		s.notifyFailure(ctx, ports.NotificationTypeHistoryLoaded, "Error", "The report history could not be loaded")
		return nil, domain.NewPersistenceError("list reports", err)
	}
	if reports == nil {
		reports = []domain.SavedReport{}
	}

	result := domain.HistoryPage{Reports: reports, Total: total, Page: page, PageSize: pageSize}

	s.mu.Lock()
	s.history = result
	s.lastPage, s.lastSize = page, pageSize
	s.mu.Unlock()

	return &result, nil
}

// Get fetches one saved report and marks it as the currently viewed report
func (s *SnapshotStore) Get(ctx context.Context, reportID string) (*domain.SavedReport, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return nil, domain.NewValidationError("report ID is required")
	}

	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		s.notifyFailure(ctx, ports.NotificationTypeReportViewed, "Error", "The report could not be loaded")
		if domain.IsNotFound(err) {
			return nil, fmt.Errorf("get report %s: %w", reportID, err)
		}
		s.logger.Error(ctx, "Failed to get report", err, map[string]interface{}{"report_id": reportID})
		return nil, domain.NewPersistenceError("get report", err)
	}

	s.mu.Lock()
	s.viewed = report
	s.mu.Unlock()

	return report, nil
}

// Delete removes a saved report. Deleting an id that no longer exists,
// including a second delete of the same id, fails with a not-found error and
// leaves the cached history unchanged.
func (s *SnapshotStore) Delete(ctx context.Context, reportID string) error {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return domain.NewValidationError("report ID is required")
	}

	if err := s.repo.Delete(ctx, reportID); err != nil {
		s.notifyFailure(ctx, ports.NotificationTypeReportDeleted, "Error", "The report could not be deleted")
		if domain.IsNotFound(err) {
			return fmt.Errorf("delete report %s: %w", reportID, err)
		}
		s.logger.Error(ctx, "Failed to delete report", err, map[string]interface{}{"report_id": reportID})
		return domain.NewPersistenceError("delete report", err)
	}

	s.mu.Lock()
	if s.viewed != nil && s.viewed.ReportID == reportID {
		s.viewed = nil
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "Report deleted", map[string]interface{}{"report_id": reportID})
	s.notifySuccess(ctx, ports.NotificationTypeReportDeleted, "Report deleted", "The report was deleted successfully")
	s.refresh(ctx)
	return nil
}

// History returns the cached history view
func (s *SnapshotStore) History() domain.HistoryPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.history
	h.Reports = append([]domain.SavedReport(nil), s.history.Reports...)
	return h
}

// Viewed returns the report last fetched with Get, nil if none
func (s *SnapshotStore) Viewed() *domain.SavedReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewed
}

// Session returns the session new reports are attributed to
func (s *SnapshotStore) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *SnapshotStore) rebind(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// refresh reloads the last listed page. A failure keeps the previous view.
func (s *SnapshotStore) refresh(ctx context.Context) {
	s.mu.RLock()
	page, size := s.lastPage, s.lastSize
	s.mu.RUnlock()

	if _, err := s.List(ctx, page, size); err != nil {
		s.logger.Warn(ctx, "History refresh failed, keeping cached view", map[string]interface{}{"error": err.Error()})
	}
}

func (s *SnapshotStore) normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.paging.DefaultPageSize
	}
	if pageSize > s.paging.MaxPageSize {
		pageSize = s.paging.MaxPageSize
	}
	return page, pageSize
}

func (s *SnapshotStore) notifySuccess(ctx context.Context, t ports.NotificationType, title, message string) {
	notify(ctx, s.notifier, s.logger, ports.NewNotification(t, ports.NotificationLevelInfo, s.Session().UserID, title, message))
}

func (s *SnapshotStore) notifyFailure(ctx context.Context, t ports.NotificationType, title, message string) {
	notify(ctx, s.notifier, s.logger, ports.NewNotification(t, ports.NotificationLevelError, s.Session().UserID, title, message))
}

func notify(ctx context.Context, notifier ports.NotificationService, log logger.Logger, n *ports.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		log.Warn(ctx, "Failed to deliver notification", map[string]interface{}{"type": n.Type, "error": err.Error()})
	}
}
