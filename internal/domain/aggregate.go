package domain

import "math"

type orderTally struct {
	total        int
	completed    int
	inProgress   int
	resolvedDays float64
	resolved     int
}

// AggregateMetrics rolls the filtered orders up per technician. Technicians
// without matching orders are omitted, and the output follows the order of
// the technicians slice. Orders assigned to unknown technicians are ignored.
func AggregateMetrics(technicians []Technician, filtered []WorkOrder) []TechnicianMetric {
	tallies := make(map[string]*orderTally, len(technicians))
	for _, o := range filtered {
		if !o.IsAssigned() {
			continue
		}
		t, ok := tallies[o.AssignedTechnicianID]
		if !ok {
			t = &orderTally{}
			tallies[o.AssignedTechnicianID] = t
		}
		t.total++
		switch o.Status {
		case WorkOrderStatusCompleted:
			t.completed++
			if days, ok := o.ResolutionDays(); ok {
				t.resolvedDays += days
				t.resolved++
			}
		case WorkOrderStatusInProgress:
			t.inProgress++
		}
	}

	metrics := make([]TechnicianMetric, 0, len(tallies))
	for _, tech := range technicians {
		t, ok := tallies[tech.ID]
		if !ok || t.total == 0 {
			continue
		}
		var avg float64
		if t.completed > 0 && t.resolved > 0 {
			avg = roundTenth(t.resolvedDays / float64(t.resolved))
		}
		metrics = append(metrics, TechnicianMetric{
			TechnicianID:      tech.ID,
			TechnicianName:    tech.Name,
			Zone:              tech.Zone,
			Specialty:         tech.Specialty,
			TotalOrders:       t.total,
			CompletedOrders:   t.completed,
			InProgressOrders:  t.inProgress,
			AvgResolutionTime: avg,
		})
		// a technician listed twice must not be emitted twice
		delete(tallies, tech.ID)
	}
	return metrics
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
