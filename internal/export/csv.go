package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fixora/fieldreports/internal/domain"
)

// ContentType is the MIME type of the exported document
const ContentType = "text/csv; charset=utf-8"

// Header is the fixed first row of the export
var Header = []string{
	"Técnico",
	"Zona",
	"Especialidad",
	"Órdenes Totales",
	"Completadas",
	"En Progreso",
	"Tiempo Promedio (días)",
}

// Filename embeds the calendar date of now
func Filename(now time.Time) string {
	return fmt.Sprintf("reporte_tecnicos_%s.csv", now.Format(domain.DateLayout))
}

// WriteCSV writes the header and one row per metric in list order. Fields
// are quoted when they contain a comma, quote or line break.
func WriteCSV(w io.Writer, metrics []domain.TechnicianMetric) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, m := range metrics {
		row := []string{
			m.TechnicianName,
			m.Zone,
			m.Specialty,
			strconv.Itoa(m.TotalOrders),
			strconv.Itoa(m.CompletedOrders),
			strconv.Itoa(m.InProgressOrders),
			strconv.FormatFloat(m.AvgResolutionTime, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", m.TechnicianID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is a rendered export ready for download
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render builds the export document for metrics as of now
func Render(metrics []domain.TechnicianMetric, now time.Time) (*Document, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, metrics); err != nil {
		return nil, err
	}
	return &Document{
		Filename:    Filename(now),
		ContentType: ContentType,
		Body:        buf.Bytes(),
	}, nil
}
