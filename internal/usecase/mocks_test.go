package usecase

import (
	"context"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/ports"
	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Save(ctx context.Context, draft *domain.ReportDraft) (*domain.SavedReport, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedReport), args.Error(1)
}

func (m *MockReportRepository) History(ctx context.Context, page, pageSize int) ([]domain.SavedReport, int, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SavedReport), args.Int(1), args.Error(2)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*domain.SavedReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedReport), args.Error(1)
}

func (m *MockReportRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) GetTechnicians(ctx context.Context) ([]domain.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Technician), args.Error(1)
}

func (m *MockDataSource) GetWorkOrders(ctx context.Context) ([]domain.WorkOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkOrder), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, n *ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// notificationOf matches a notification by type and level
func notificationOf(t ports.NotificationType, level ports.NotificationLevel) interface{} {
	return mock.MatchedBy(func(n *ports.Notification) bool {
		return n.Type == t && n.Level == level
	})
}
