package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
)

const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
	ShiftNight   = "night"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

// ShiftWindow resolves the shift containing the given instant. Morning runs
// 06:00-14:00, evening 14:00-22:00, everything else is the night shift; a
// night shift before 06:00 started at 22:00 the previous day.
func ShiftWindow(now time.Time) (name string, start time.Time) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch hour := now.Hour(); {
	case hour >= 6 && hour < 14:
		return ShiftMorning, day.Add(6 * time.Hour)
	case hour >= 14 && hour < 22:
		return ShiftEvening, day.Add(14 * time.Hour)
	case hour >= 22:
		return ShiftNight, day.Add(22 * time.Hour)
	default:
		return ShiftNight, day.Add(-2 * time.Hour)
	}
}

type Row struct {
	Time      string `json:"time"`
	TruckID   string `json:"truck_id"`
	EventType string `json:"event_type"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
}

type ShiftReport struct {
	Shift       string `json:"shift"`
	ShiftStart  string `json:"shift_start"`
	GeneratedAt string `json:"generated_at"`
	Rows        []Row  `json:"rows"`
}

type Service struct {
	repo ports.YardRepository
}

func NewService(repo ports.YardRepository) *Service {
	return &Service{repo: repo}
}

// BuildShiftReport collects the truck events recorded since the start of the
// current shift.
func (s *Service) BuildShiftReport(ctx context.Context, now time.Time) (ShiftReport, error) {
	if ctx == nil {
		return ShiftReport{}, errors.New("context is required")
	}
	if s.repo == nil {
		return ShiftReport{}, errors.New("yard repository is required")
	}

	shift, start := ShiftWindow(now)
	events, err := s.repo.ListTruckEventsSince(ctx, start.Format(yard.TimestampLayout))
	if err != nil {
		return ShiftReport{}, errs.Wrapf(err, "query %s shift events", shift)
	}

	rows := make([]Row, 0, len(events))
	for _, event := range events {
		rows = append(rows, Row{
			Time:      event.Timestamp,
			TruckID:   event.TruckID,
			EventType: event.EventType,
			Location:  event.Location,
			Notes:     event.Notes,
		})
	}

	return ShiftReport{
		Shift:       shift,
		ShiftStart:  start.Format(yard.TimestampLayout),
		GeneratedAt: now.UTC().Format(yard.TimestampLayout),
		Rows:        rows,
	}, nil
}

// Filename names the report download for the given format, e.g.
// "shift_report_morning_20260831.csv".
func (r ShiftReport) Filename(format string) string {
	stamp := r.GeneratedAt
	if generated, err := time.Parse(time.RFC3339Nano, r.GeneratedAt); err == nil {
		stamp = generated.Format("20060102")
	}
	return fmt.Sprintf("shift_report_%s_%s.%s", r.Shift, stamp, format)
}

// Write renders the report in the requested format.
func (r ShiftReport) Write(w io.Writer, format string) error {
	switch format {
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatXLSX:
		return r.WriteXLSX(w)
	case FormatPDF:
		return r.WritePDF(w)
	default:
		return errs.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

var reportHeader = []string{"Time", "Truck ID", "Event Type", "Location", "Notes"}

func (r ShiftReport) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeader); err != nil {
		return errs.Wrap(err, "write csv header")
	}
	for _, row := range r.Rows {
		if err := writer.Write([]string{row.Time, row.TruckID, row.EventType, row.Location, row.Notes}); err != nil {
			return errs.Wrap(err, "write csv row")
		}
	}
	writer.Flush()
	return errs.Wrap(writer.Error(), "flush csv")
}

func (r ShiftReport) WriteXLSX(w io.Writer) error {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheet := "Shift Report"
	file.SetSheetName("Sheet1", sheet)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return errs.Wrap(err, "create header style")
	}

	for col, title := range reportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errs.Wrap(err, "resolve header cell")
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return errs.Wrap(err, "write header cell")
		}
		if err := file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return errs.Wrap(err, "style header cell")
		}
	}

	for i, row := range r.Rows {
		values := []string{row.Time, row.TruckID, row.EventType, row.Location, row.Notes}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return errs.Wrap(err, "resolve data cell")
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return errs.Wrap(err, "write data cell")
			}
		}
	}

	if err := file.SetColWidth(sheet, "A", "A", 28); err != nil {
		return errs.Wrap(err, "set column width")
	}
	if err := file.SetColWidth(sheet, "B", "E", 18); err != nil {
		return errs.Wrap(err, "set column width")
	}

	return errs.Wrap(file.Write(w), "write xlsx")
}

func (r ShiftReport) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Shift Report - %s", r.Shift), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s (%d events since %s)",
		r.GeneratedAt, len(r.Rows), r.ShiftStart), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{52, 28, 30, 35, 45}
	pdf.SetFont("Helvetica", "B", 9)
	for i, title := range reportHeader {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range r.Rows {
		values := []string{row.Time, row.TruckID, row.EventType, row.Location, row.Notes}
		for i, value := range values {
			pdf.CellFormat(widths[i], 6, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return errs.Wrap(pdf.Output(w), "write pdf")
}
