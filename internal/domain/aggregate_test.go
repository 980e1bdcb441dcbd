package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(s string) *time.Time {
	t := ts(s)
	return &t
}

func TestAggregateMetrics_SingleCompletedOrder(t *testing.T) {
	technicians := []Technician{{ID: "t1", Name: "Ana Ruiz", Zone: "North", Specialty: "HVAC"}}
	orders := []WorkOrder{{
		ID:                   "o1",
		CreatedAt:            ts("2024-01-10T00:00:00Z"),
		Specialty:            "HVAC",
		Zone:                 "North",
		Status:               WorkOrderStatusCompleted,
		AssignedTechnicianID: "t1",
	}}

	metrics := AggregateMetrics(technicians, FilterWorkOrders(orders, januaryFilter(), nil))

	require.Len(t, metrics, 1)
	m := metrics[0]
	assert.Equal(t, "t1", m.TechnicianID)
	assert.Equal(t, "Ana Ruiz", m.TechnicianName)
	assert.Equal(t, "North", m.Zone)
	assert.Equal(t, "HVAC", m.Specialty)
	assert.Equal(t, 1, m.TotalOrders)
	assert.Equal(t, 1, m.CompletedOrders)
	assert.Equal(t, 0, m.InProgressOrders)
	// no completion timestamp, so nothing contributes to the average
	assert.Equal(t, 0.0, m.AvgResolutionTime)
}

func TestAggregateMetrics_ZoneMismatchYieldsEmptyReport(t *testing.T) {
	technicians := []Technician{{ID: "t1", Zone: "North", Specialty: "HVAC"}}
	orders := []WorkOrder{{
		ID:                   "o1",
		CreatedAt:            ts("2024-01-10T00:00:00Z"),
		Specialty:            "HVAC",
		Zone:                 "North",
		Status:               WorkOrderStatusCompleted,
		AssignedTechnicianID: "t1",
	}}
	f := januaryFilter()
	f.Zone = "South"

	metrics := AggregateMetrics(technicians, FilterWorkOrders(orders, f, nil))
	summary := Summarize(metrics)

	assert.Empty(t, metrics)
	assert.Equal(t, ReportSummary{}, summary)
}

func TestAggregateMetrics_CountsAndOrdering(t *testing.T) {
	technicians := []Technician{
		{ID: "t3", Name: "Carla"},
		{ID: "t1", Name: "Ana"},
		{ID: "t2", Name: "Bruno"},
	}
	orders := []WorkOrder{
		{ID: "o1", AssignedTechnicianID: "t1", Status: WorkOrderStatusCompleted},
		{ID: "o2", AssignedTechnicianID: "t1", Status: WorkOrderStatusInProgress},
		{ID: "o3", AssignedTechnicianID: "t1", Status: WorkOrderStatusAssigned},
		{ID: "o4", AssignedTechnicianID: "t3", Status: WorkOrderStatusInProgress},
		{ID: "o5", AssignedTechnicianID: "t3", Status: WorkOrderStatusCancelled},
	}

	metrics := AggregateMetrics(technicians, orders)

	require.Len(t, metrics, 2)
	assert.Equal(t, "t3", metrics[0].TechnicianID, "technician list order is preserved")
	assert.Equal(t, "t1", metrics[1].TechnicianID)

	assert.Equal(t, 2, metrics[0].TotalOrders)
	assert.Equal(t, 0, metrics[0].CompletedOrders)
	assert.Equal(t, 1, metrics[0].InProgressOrders)

	assert.Equal(t, 3, metrics[1].TotalOrders)
	assert.Equal(t, 1, metrics[1].CompletedOrders)
	assert.Equal(t, 1, metrics[1].InProgressOrders)

	for _, m := range metrics {
		assert.LessOrEqual(t, m.CompletedOrders+m.InProgressOrders, m.TotalOrders)
	}
}

func TestAggregateMetrics_TotalMatchesFilteredCount(t *testing.T) {
	technicians := []Technician{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	var orders []WorkOrder
	statuses := []WorkOrderStatus{WorkOrderStatusCompleted, WorkOrderStatusInProgress, WorkOrderStatusPending}
	for i := 0; i < 30; i++ {
		orders = append(orders, WorkOrder{
			ID:                   string(rune('a' + i)),
			AssignedTechnicianID: technicians[i%3].ID,
			Status:               statuses[i%len(statuses)],
			CreatedAt:            ts("2024-01-15T12:00:00Z"),
		})
	}
	filtered := FilterWorkOrders(orders, januaryFilter(), nil)

	var total int
	for _, m := range AggregateMetrics(technicians, filtered) {
		total += m.TotalOrders
	}

	assert.Equal(t, len(filtered), total)
}

func TestAggregateMetrics_ResolutionTime(t *testing.T) {
	technicians := []Technician{{ID: "t1"}}
	orders := []WorkOrder{
		{
			ID:                   "o1",
			AssignedTechnicianID: "t1",
			Status:               WorkOrderStatusCompleted,
			CreatedAt:            ts("2024-01-01T00:00:00Z"),
			AssignedAt:           timePtr("2024-01-02T00:00:00Z"),
			CompletedAt:          timePtr("2024-01-04T00:00:00Z"),
		},
		{
			ID:                   "o2",
			AssignedTechnicianID: "t1",
			Status:               WorkOrderStatusCompleted,
			CreatedAt:            ts("2024-01-01T00:00:00Z"),
			CompletedAt:          timePtr("2024-01-04T12:00:00Z"),
		},
		{
			ID:                   "o3",
			AssignedTechnicianID: "t1",
			Status:               WorkOrderStatusCompleted,
			CreatedAt:            ts("2024-01-01T00:00:00Z"),
		},
	}

	metrics := AggregateMetrics(technicians, orders)

	require.Len(t, metrics, 1)
	// (2 + 3.5) / 2 = 2.75 -> 2.8
	assert.Equal(t, 2.8, metrics[0].AvgResolutionTime)
	assert.Equal(t, 3, metrics[0].CompletedOrders)
}

func TestAggregateMetrics_NegativeDurationClampsToZero(t *testing.T) {
	technicians := []Technician{{ID: "t1"}}
	orders := []WorkOrder{{
		ID:                   "o1",
		AssignedTechnicianID: "t1",
		Status:               WorkOrderStatusCompleted,
		CreatedAt:            ts("2024-01-05T00:00:00Z"),
		CompletedAt:          timePtr("2024-01-01T00:00:00Z"),
	}}

	metrics := AggregateMetrics(technicians, orders)

	require.Len(t, metrics, 1)
	assert.Equal(t, 0.0, metrics[0].AvgResolutionTime)
}

func TestAggregateMetrics_Deterministic(t *testing.T) {
	technicians := []Technician{{ID: "t1", Name: "Ana"}, {ID: "t2", Name: "Bruno"}}
	orders := []WorkOrder{
		{ID: "o1", AssignedTechnicianID: "t1", Status: WorkOrderStatusCompleted, CreatedAt: ts("2024-01-01T00:00:00Z"), CompletedAt: timePtr("2024-01-03T06:00:00Z")},
		{ID: "o2", AssignedTechnicianID: "t2", Status: WorkOrderStatusInProgress, CreatedAt: ts("2024-01-02T00:00:00Z")},
	}

	first := AggregateMetrics(technicians, orders)
	second := AggregateMetrics(technicians, orders)

	assert.Equal(t, first, second)
}

func TestAggregateMetrics_DuplicateTechnicianEmittedOnce(t *testing.T) {
	technicians := []Technician{{ID: "t1"}, {ID: "t1"}}
	orders := []WorkOrder{{ID: "o1", AssignedTechnicianID: "t1"}}

	metrics := AggregateMetrics(technicians, orders)

	assert.Len(t, metrics, 1)
}

func BenchmarkAggregateMetrics(b *testing.B) {
	technicians := make([]Technician, 50)
	for i := range technicians {
		technicians[i] = Technician{ID: string(rune('A' + i))}
	}
	orders := make([]WorkOrder, 5000)
	for i := range orders {
		orders[i] = WorkOrder{AssignedTechnicianID: technicians[i%50].ID, Status: WorkOrderStatusCompleted}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AggregateMetrics(technicians, orders)
	}
}
