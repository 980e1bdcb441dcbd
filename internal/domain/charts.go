package domain

import "strings"

// Options lists the selectable zones and specialties
type Options struct {
	Zones       []string `json:"zones"`
	Specialties []string `json:"specialties"`
}

// FilterOptions collects distinct zones and specialties in first-seen order
func FilterOptions(technicians []Technician) Options {
	opts := Options{Zones: []string{}, Specialties: []string{}}
	seenZone := make(map[string]bool)
	seenSpecialty := make(map[string]bool)
	for _, t := range technicians {
		if !seenZone[t.Zone] {
			seenZone[t.Zone] = true
			opts.Zones = append(opts.Zones, t.Zone)
		}
		if !seenSpecialty[t.Specialty] {
			seenSpecialty[t.Specialty] = true
			opts.Specialties = append(opts.Specialties, t.Specialty)
		}
	}
	return opts
}

// OrdersByTechnician charts the first limit metrics by total orders,
// labelled with the technician's first name
func OrdersByTechnician(metrics []TechnicianMetric, limit int) []ChartPoint {
	if limit < 0 || limit > len(metrics) {
		limit = len(metrics)
	}
	points := make([]ChartPoint, 0, limit)
	for _, m := range metrics[:limit] {
		points = append(points, ChartPoint{Name: firstName(m.TechnicianName), Value: m.TotalOrders})
	}
	return points
}

// OrdersByZone sums total orders of the metrics falling in each zone
func OrdersByZone(zones []string, metrics []TechnicianMetric) []ChartPoint {
	points := make([]ChartPoint, 0, len(zones))
	for _, z := range zones {
		var total int
		for _, m := range metrics {
			if m.Zone == z {
				total += m.TotalOrders
			}
		}
		points = append(points, ChartPoint{Name: z, Value: total})
	}
	return points
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
