package persistence

import (
	"context"
	"sync"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/ports"
)

// MemoryDataSource serves a fixed dataset, used with the memory store driver
// and in tests
type MemoryDataSource struct {
	mu          sync.RWMutex
	technicians []domain.Technician
	orders      []domain.WorkOrder
}

func NewMemoryDataSource(technicians []domain.Technician, orders []domain.WorkOrder) *MemoryDataSource {
	s := &MemoryDataSource{}
	s.Replace(technicians, orders)
	return s
}

var _ ports.DataSource = (*MemoryDataSource)(nil)

// Replace swaps the served dataset
func (s *MemoryDataSource) Replace(technicians []domain.Technician, orders []domain.WorkOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.technicians = append([]domain.Technician{}, technicians...)
	s.orders = append([]domain.WorkOrder{}, orders...)
}

func (s *MemoryDataSource) GetTechnicians(ctx context.Context) ([]domain.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Technician{}, s.technicians...), nil
}

func (s *MemoryDataSource) GetWorkOrders(ctx context.Context) ([]domain.WorkOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.WorkOrder{}, s.orders...), nil
}
