package domain

// Summarize folds the metric list into report totals. The average resolution
// time is the mean of the per-technician averages rounded to one decimal.
func Summarize(metrics []TechnicianMetric) ReportSummary {
	var s ReportSummary
	if len(metrics) == 0 {
		return s
	}
	var avgSum float64
	for _, m := range metrics {
		s.TotalOrders += m.TotalOrders
		s.TotalCompleted += m.CompletedOrders
		s.TotalInProgress += m.InProgressOrders
		avgSum += m.AvgResolutionTime
	}
	s.AvgResolutionTime = roundTenth(avgSum / float64(len(metrics)))
	return s
}
