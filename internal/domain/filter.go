package domain

import "time"

// Matches reports whether the order falls inside the window, satisfies the
// service type and zone constraints, and is assigned to a technician.
// Dates are compared as calendar dates in loc; a nil loc means UTC.
// A window whose start is after its end matches nothing.
func (f ReportFilter) Matches(o WorkOrder, loc *time.Location) bool {
	if !o.IsAssigned() {
		return false
	}
	day := DateIn(o.CreatedAt, loc)
	if day.Before(f.StartDate) || day.After(f.EndDate) {
		return false
	}
	if f.ServiceType != FilterAll && f.ServiceType != o.Specialty {
		return false
	}
	if f.Zone != FilterAll && f.Zone != o.Zone {
		return false
	}
	return true
}

// FilterWorkOrders returns the orders matching f, preserving input order
func FilterWorkOrders(orders []WorkOrder, f ReportFilter, loc *time.Location) []WorkOrder {
	f = f.Normalize()
	filtered := make([]WorkOrder, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o, loc) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
