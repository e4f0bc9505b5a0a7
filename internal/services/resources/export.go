package resources

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/habmon/habmon/internal/models"
)

// HistoryRecord is one CSV row of a resource history export.
type HistoryRecord struct {
	Code       string  `csv:"code"`
	Timestamp  string  `csv:"timestamp"`
	EventType  string  `csv:"event_type"`
	Percentage float64 `csv:"percentage"`
	IsCritical bool    `csv:"is_critical"`
	Note       string  `csv:"note"`
}

// HistoryRecords converts history points for CSV output.
func HistoryRecords(code string, points []models.HistoryPoint) []HistoryRecord {
	records := make([]HistoryRecord, 0, len(points))
	for _, p := range points {
		records = append(records, HistoryRecord{
			Code:       code,
			Timestamp:  p.Timestamp.UTC().Format(time.RFC3339Nano),
			EventType:  p.EventType.String(),
			Percentage: p.Percentage,
			IsCritical: p.IsCritical,
			Note:       p.Note,
		})
	}
	return records
}

// WriteHistoryCSV writes points as CSV with a header row.
func WriteHistoryCSV(w io.Writer, code string, points []models.HistoryPoint) error {
	if err := gocsv.Marshal(HistoryRecords(code, points), w); err != nil {
		return fmt.Errorf("writing history csv: %w", err)
	}
	return nil
}

// ExportHistory writes the bounded history of the resource with code to w.
func (s *Service) ExportHistory(ctx context.Context, w io.Writer, code string, from, to *time.Time) error {
	code = models.NormalizeCode(code)
	points, err := s.History(ctx, code, from, to)
	if err != nil {
		return err
	}
	return WriteHistoryCSV(w, code, points)
}
