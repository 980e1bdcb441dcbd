package domain

import "time"

// Dataset is the raw input of one aggregation run
type Dataset struct {
	Technicians []Technician
	WorkOrders  []WorkOrder
}

// SnapshotOptions tunes the derived chart series and date handling
type SnapshotOptions struct {
	Location      *time.Location
	TopTechnician int
}

// BuildSnapshot runs filter, aggregate and summarize over ds
func BuildSnapshot(ds Dataset, f ReportFilter, opts SnapshotOptions, now time.Time) *Snapshot {
	f = f.Normalize()
	filtered := FilterWorkOrders(ds.WorkOrders, f, opts.Location)
	metrics := AggregateMetrics(ds.Technicians, filtered)
	options := FilterOptions(ds.Technicians)
	return &Snapshot{
		Filters:            f,
		Metrics:            metrics,
		Summary:            Summarize(metrics),
		OrdersByTechnician: OrdersByTechnician(metrics, opts.TopTechnician),
		OrdersByZone:       OrdersByZone(options.Zones, metrics),
		Options:            options,
		GeneratedAt:        now,
	}
}
