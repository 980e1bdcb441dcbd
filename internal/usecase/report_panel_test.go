package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/export"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)

func testPanelConfig() PanelConfig {
	return PanelConfig{
		Location:          time.UTC,
		DefaultWindowDays: 30,
		TopTechnicians:    10,
		Now:               func() time.Time { return fixedNow },
	}
}

func newTestPanel(source ports.DataSource, repo ports.ReportRepository, notifier ports.NotificationService) *ReportPanel {
	log := logger.NewNop()
	paging := PageConfig{DefaultPageSize: 100, MaxPageSize: 100}
	store := NewSnapshotStore(testSession, repo, notifier, log, paging)
	return NewReportPanel(testSession, source, store, notifier, log, testPanelConfig())
}

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func testTechnicians() []domain.Technician {
	return []domain.Technician{
		{ID: "t1", Name: "Ana Ruiz", Zone: "North", Specialty: "HVAC"},
		{ID: "t2", Name: "Luis Gómez", Zone: "South", Specialty: "Electrical"},
	}
}

func testWorkOrders() []domain.WorkOrder {
	assigned := at(5, 8)
	completed := at(7, 8)
	return []domain.WorkOrder{
		{ID: "o1", CreatedAt: at(5, 7), Specialty: "HVAC", Zone: "North", Status: domain.WorkOrderStatusCompleted,
			AssignedTechnicianID: "t1", AssignedAt: &assigned, CompletedAt: &completed},
		{ID: "o2", CreatedAt: at(10, 9), Specialty: "HVAC", Zone: "North", Status: domain.WorkOrderStatusInProgress,
			AssignedTechnicianID: "t1"},
		{ID: "o3", CreatedAt: at(12, 9), Specialty: "Electrical", Zone: "South", Status: domain.WorkOrderStatusAssigned,
			AssignedTechnicianID: "t2"},
		{ID: "o4", CreatedAt: at(12, 9), Specialty: "Electrical", Zone: "South", Status: domain.WorkOrderStatusPending},
	}
}

func loadedSource() *MockDataSource {
	source := new(MockDataSource)
	source.On("GetTechnicians", mock.Anything).Return(testTechnicians(), nil)
	source.On("GetWorkOrders", mock.Anything).Return(testWorkOrders(), nil)
	return source
}

func TestReportPanel_StartsWithDefaultWindow(t *testing.T) {
	panel := newTestPanel(new(MockDataSource), new(MockReportRepository), nil)

	f := panel.Filters()

	assert.Equal(t, "2024-01-01", f.StartDate.String())
	assert.Equal(t, "2024-01-31", f.EndDate.String())
	assert.Equal(t, domain.FilterAll, f.ServiceType)
	assert.Equal(t, domain.FilterAll, f.Zone)
}

func TestReportPanel_LoadBuildsSnapshot(t *testing.T) {
	ctx := context.Background()
	source := loadedSource()
	panel := newTestPanel(source, new(MockReportRepository), nil)

	snap, err := panel.Load(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Metrics, 2)
	assert.Equal(t, "t1", snap.Metrics[0].TechnicianID)
	assert.Equal(t, 2, snap.Metrics[0].TotalOrders)
	assert.Equal(t, 1, snap.Metrics[0].CompletedOrders)
	assert.Equal(t, 1, snap.Metrics[0].InProgressOrders)
	assert.Equal(t, 2.0, snap.Metrics[0].AvgResolutionTime)
	assert.Equal(t, 1, snap.Metrics[1].TotalOrders)
	assert.Equal(t, domain.ReportSummary{TotalOrders: 3, TotalCompleted: 1, TotalInProgress: 1, AvgResolutionTime: 1.0}, snap.Summary)
	assert.Equal(t, []string{"North", "South"}, snap.Options.Zones)
	source.AssertExpectations(t)

	current, err := panel.Snapshot()
	require.NoError(t, err)
	assert.Same(t, snap, current)
}

func TestReportPanel_LoadFailureKeepsPreviousDataset(t *testing.T) {
	ctx := context.Background()
	source := new(MockDataSource)
	source.On("GetTechnicians", mock.Anything).Return(testTechnicians(), nil)
	source.On("GetWorkOrders", mock.Anything).Return(testWorkOrders(), nil).Once()
	source.On("GetWorkOrders", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	notifier := new(MockNotificationService)
	notifier.On("Notify", mock.Anything, notificationOf(ports.NotificationTypeDataLoaded, ports.NotificationLevelError)).Return(nil)
	panel := newTestPanel(source, new(MockReportRepository), notifier)

	first, err := panel.Load(ctx)
	require.NoError(t, err)

	_, err = panel.Load(ctx)
	assert.True(t, domain.IsLoad(err))

	current, err := panel.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, current)
	notifier.AssertExpectations(t)
}

func TestReportPanel_NothingLoaded(t *testing.T) {
	ctx := context.Background()
	source := new(MockDataSource)
	source.On("GetTechnicians", mock.Anything).Return(nil, errors.New("timeout"))
	source.On("GetWorkOrders", mock.Anything).Return(testWorkOrders(), nil).Maybe()
	panel := newTestPanel(source, new(MockReportRepository), nil)

	_, err := panel.Load(ctx)
	assert.True(t, domain.IsLoad(err))

	_, err = panel.Snapshot()
	assert.ErrorIs(t, err, domain.ErrDatasetNotLoaded)
	_, err = panel.Recompute(ctx)
	assert.ErrorIs(t, err, domain.ErrDatasetNotLoaded)
	_, err = panel.Export(ctx)
	assert.ErrorIs(t, err, domain.ErrDatasetNotLoaded)
}

func TestReportPanel_SetFiltersRecomputes(t *testing.T) {
	ctx := context.Background()
	panel := newTestPanel(loadedSource(), new(MockReportRepository), nil)
	_, err := panel.Load(ctx)
	require.NoError(t, err)

	snap, err := panel.SetFilters(ctx, domain.ReportFilter{
		StartDate: domain.MustParseDate("2024-01-01"),
		EndDate:   domain.MustParseDate("2024-01-31"),
		Zone:      "South",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.FilterAll, snap.Filters.ServiceType)
	require.Len(t, snap.Metrics, 1)
	assert.Equal(t, "t2", snap.Metrics[0].TechnicianID)
	assert.Equal(t, 1, snap.Metrics[0].TotalOrders)
	assert.Equal(t, 1, snap.Summary.TotalOrders)
	assert.Equal(t, "South", panel.Filters().Zone)
}

func TestReportPanel_SetFiltersBeforeLoad(t *testing.T) {
	ctx := context.Background()
	panel := newTestPanel(new(MockDataSource), new(MockReportRepository), nil)
	f := domain.ReportFilter{
		StartDate:   domain.MustParseDate("2024-02-01"),
		EndDate:     domain.MustParseDate("2024-02-29"),
		ServiceType: "HVAC",
		Zone:        "North",
	}

	_, err := panel.SetFilters(ctx, f)

	assert.ErrorIs(t, err, domain.ErrDatasetNotLoaded)
	assert.Equal(t, f, panel.Filters())
}

func TestReportPanel_RecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	panel := newTestPanel(loadedSource(), new(MockReportRepository), nil)
	_, err := panel.Load(ctx)
	require.NoError(t, err)

	first, err := panel.Recompute(ctx)
	require.NoError(t, err)
	second, err := panel.Recompute(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.Summary, second.Summary)
}

// gatedSource serves a different dataset per load and can hold a load until released
type gatedSource struct {
	mu       sync.Mutex
	datasets map[int]domain.Dataset
	failures map[int]error
	gates    map[int]chan struct{}
	entered  map[int]chan struct{}
	once     map[int]*sync.Once
}

type loadKey struct{}

func newGatedSource() *gatedSource {
	return &gatedSource{
		datasets: make(map[int]domain.Dataset),
		failures: make(map[int]error),
		gates:    make(map[int]chan struct{}),
		entered:  make(map[int]chan struct{}),
		once:     make(map[int]*sync.Once),
	}
}

func (s *gatedSource) add(n int, ds domain.Dataset, gated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[n] = ds
	s.entered[n] = make(chan struct{})
	s.once[n] = &sync.Once{}
	if gated {
		s.gates[n] = make(chan struct{})
	}
}

func (s *gatedSource) fail(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[n] = err
}

func (s *gatedSource) wait(ctx context.Context) (domain.Dataset, error) {
	n := ctx.Value(loadKey{}).(int)
	s.mu.Lock()
	ds, gate, entered, once := s.datasets[n], s.gates[n], s.entered[n], s.once[n]
	s.mu.Unlock()

	once.Do(func() { close(entered) })
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ds, s.failures[n]
}

func (s *gatedSource) GetTechnicians(ctx context.Context) ([]domain.Technician, error) {
	ds, err := s.wait(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Technicians, nil
}

func (s *gatedSource) GetWorkOrders(ctx context.Context) ([]domain.WorkOrder, error) {
	ds, err := s.wait(ctx)
	if err != nil {
		return nil, err
	}
	return ds.WorkOrders, nil
}

func TestReportPanel_SupersededLoadIsDiscarded(t *testing.T) {
	source := newGatedSource()
	stale := domain.Dataset{Technicians: testTechnicians()[:1], WorkOrders: testWorkOrders()}
	fresh := domain.Dataset{Technicians: testTechnicians(), WorkOrders: testWorkOrders()}
	source.add(1, stale, true)
	source.add(2, fresh, false)

	panel := newTestPanel(source, new(MockReportRepository), nil)

	done := make(chan error, 1)
	go func() {
		_, err := panel.Load(context.WithValue(context.Background(), loadKey{}, 1))
		done <- err
	}()
	<-source.entered[1]

	snap, err := panel.Load(context.WithValue(context.Background(), loadKey{}, 2))
	require.NoError(t, err)
	require.Len(t, snap.Metrics, 2)

	close(source.gates[1])
	require.NoError(t, <-done)

	current, err := panel.Snapshot()
	require.NoError(t, err)
	assert.Len(t, current.Metrics, 2)
}

func TestReportPanel_SupersededFailedLoadIsIgnored(t *testing.T) {
	source := newGatedSource()
	fresh := domain.Dataset{Technicians: testTechnicians(), WorkOrders: testWorkOrders()}
	source.add(1, domain.Dataset{}, true)
	source.fail(1, errors.New("network down"))
	source.add(2, fresh, false)

	notifier := new(MockNotificationService)
	panel := newTestPanel(source, new(MockReportRepository), notifier)

	done := make(chan error, 1)
	go func() {
		_, err := panel.Load(context.WithValue(context.Background(), loadKey{}, 1))
		done <- err
	}()
	<-source.entered[1]

	snap, err := panel.Load(context.WithValue(context.Background(), loadKey{}, 2))
	require.NoError(t, err)
	require.Len(t, snap.Metrics, 2)

	close(source.gates[1])
	require.NoError(t, <-done)

	current, err := panel.Snapshot()
	require.NoError(t, err)
	assert.Len(t, current.Metrics, 2)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestReportPanel_SaveCurrentSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	panel := newTestPanel(loadedSource(), repo, nil)
	snap, err := panel.Load(ctx)
	require.NoError(t, err)

	repo.On("Save", ctx, mock.MatchedBy(func(d *domain.ReportDraft) bool {
		return d.ReportName == "January" &&
			d.Filters == snap.Filters &&
			d.Summary == snap.Summary &&
			len(d.Metrics) == len(snap.Metrics)
	})).Return(&domain.SavedReport{ReportID: "r1", ReportName: "January"}, nil)
	repo.On("History", ctx, 1, 100).Return([]domain.SavedReport{{ReportID: "r1"}}, 1, nil)

	saved, err := panel.Save(ctx, "January")

	require.NoError(t, err)
	assert.Equal(t, "r1", saved.ReportID)
	assert.Equal(t, 1, panel.Store().History().Total)
	repo.AssertExpectations(t)
}

func TestReportPanel_SaveBlankNameWithoutData(t *testing.T) {
	repo := new(MockReportRepository)
	panel := newTestPanel(new(MockDataSource), repo, nil)

	_, err := panel.Save(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrReportNameRequired)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReportPanel_Export(t *testing.T) {
	ctx := context.Background()
	notifier := new(MockNotificationService)
	notifier.On("Notify", mock.Anything, notificationOf(ports.NotificationTypeReportExport, ports.NotificationLevelInfo)).Return(nil)
	panel := newTestPanel(loadedSource(), new(MockReportRepository), notifier)
	_, err := panel.Load(ctx)
	require.NoError(t, err)

	doc, err := panel.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, "reporte_tecnicos_2024-01-31.csv", doc.Filename)
	assert.Equal(t, export.ContentType, doc.ContentType)
	lines := strings.Split(strings.TrimRight(string(doc.Body), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(export.Header, ","), lines[0])
	assert.Equal(t, "Ana Ruiz,North,HVAC,2,1,1,2", lines[1])
	notifier.AssertExpectations(t)
}

func TestWorkspaces_PanelPerSession(t *testing.T) {
	ws := NewWorkspaces(new(MockDataSource), new(MockReportRepository), nil, logger.NewNop(), testPanelConfig(), PageConfig{})

	a1, err := ws.Panel(domain.Session{UserID: "a"})
	require.NoError(t, err)
	a2, err := ws.Panel(domain.Session{UserID: "a"})
	require.NoError(t, err)
	b, err := ws.Panel(domain.Session{UserID: "b"})
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)

	ws.Close(domain.Session{UserID: "a"})
	a3, err := ws.Panel(domain.Session{UserID: "a"})
	require.NoError(t, err)
	assert.NotSame(t, a1, a3)

	_, err = ws.Panel(domain.Session{})
	assert.True(t, domain.IsValidation(err))
}

func TestWorkspaces_ReturningUserKeepsPanelWithNewName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	ws := NewWorkspaces(new(MockDataSource), repo, nil, logger.NewNop(), testPanelConfig(), PageConfig{})

	first, err := ws.Panel(domain.Session{UserID: "u1", Name: "Ana"})
	require.NoError(t, err)
	again, err := ws.Panel(domain.Session{UserID: "u1", Name: "Ana María"})
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.Equal(t, "Ana María", again.Store().Session().Name)

	repo.On("Save", ctx, mock.MatchedBy(func(d *domain.ReportDraft) bool {
		return d.CreatedByName == "Ana María"
	})).Return(&domain.SavedReport{ReportID: "r1"}, nil)
	repo.On("History", ctx, 1, 100).Return([]domain.SavedReport{{ReportID: "r1"}}, 1, nil)

	_, err = again.Store().Save(ctx, "January", sampleFilter(), sampleMetrics(), domain.Summarize(sampleMetrics()))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestWorkspaces_TechniciansAreTurnedAway(t *testing.T) {
	ws := NewWorkspaces(new(MockDataSource), new(MockReportRepository), nil, logger.NewNop(), testPanelConfig(), PageConfig{})

	_, err := ws.Panel(domain.Session{UserID: "t1", Role: domain.RoleTechnician})
	assert.ErrorIs(t, err, domain.ErrReportsForbidden)

	_, err = ws.Panel(domain.Session{UserID: "u1", Role: "supervisor"})
	require.NoError(t, err)
	_, err = ws.Panel(domain.Session{UserID: "u1", Role: domain.RoleTechnician})
	assert.True(t, domain.IsForbidden(err))
}
