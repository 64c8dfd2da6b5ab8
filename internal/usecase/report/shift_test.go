package report

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"yardwatch/internal/domain/yard"
	"yardwatch/internal/infrastructure/persistence/sqlite/model"
	"yardwatch/internal/infrastructure/persistence/sqlite/repository"
	"yardwatch/internal/ports"
)

func setupService(t *testing.T) (*Service, *repository.YardRepository) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "yard.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Truck{}, &model.TruckEvent{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewYardRepository(db)
	return NewService(repo), repo
}

func TestShiftWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantShift string
		wantStart time.Time
	}{
		{
			name:      "morning",
			now:       time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
			wantShift: ShiftMorning,
			wantStart: time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC),
		},
		{
			name:      "evening",
			now:       time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC),
			wantShift: ShiftEvening,
			wantStart: time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC),
		},
		{
			name:      "night after ten",
			now:       time.Date(2026, 8, 31, 23, 15, 0, 0, time.UTC),
			wantShift: ShiftNight,
			wantStart: time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC),
		},
		{
			name:      "night before dawn starts previous day",
			now:       time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC),
			wantShift: ShiftNight,
			wantStart: time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, start := ShiftWindow(tt.now)
			if shift != tt.wantShift {
				t.Fatalf("shift = %q, want %q", shift, tt.wantShift)
			}
			if !start.Equal(tt.wantStart) {
				t.Fatalf("start = %v, want %v", start, tt.wantStart)
			}
		})
	}
}

func seedEvents(t *testing.T, repo *repository.YardRepository, timestamps ...time.Time) {
	t.Helper()
	ctx := context.Background()

	truck, _, err := repo.GetOrCreateTruck(ctx, "T1", ports.TruckDefaults{})
	if err != nil {
		t.Fatalf("seed truck: %v", err)
	}
	for _, ts := range timestamps {
		if _, err := repo.AppendTruckEvent(ctx, ports.TruckEventCreate{
			TruckRef:  truck.ID,
			EventType: "docked",
			Timestamp: ts.Format(yard.TimestampLayout),
			Location:  "Bay1",
			Notes:     "Automated detection",
		}); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}
}

func TestBuildShiftReportFiltersToCurrentShift(t *testing.T) {
	svc, repo := setupService(t)
	now := time.Now().UTC()

	_, shiftStart := ShiftWindow(now)
	seedEvents(t, repo,
		shiftStart.Add(5*time.Minute),
		shiftStart.Add(-time.Hour), // before the shift, excluded
	)

	rep, err := svc.BuildShiftReport(context.Background(), now)
	if err != nil {
		t.Fatalf("BuildShiftReport() error = %v", err)
	}
	if len(rep.Rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rep.Rows))
	}
	if rep.Rows[0].TruckID != "T1" || rep.Rows[0].EventType != "docked" {
		t.Fatalf("row = %+v", rep.Rows[0])
	}
}

func sampleReport() ShiftReport {
	return ShiftReport{
		Shift:       ShiftMorning,
		ShiftStart:  "2026-08-31T06:00:00Z",
		GeneratedAt: "2026-08-31T09:30:00Z",
		Rows: []Row{
			{Time: "2026-08-31T08:00:00Z", TruckID: "T1", EventType: "gate_in", Location: "Gate A", Notes: "Automated detection"},
			{Time: "2026-08-31T08:20:00Z", TruckID: "T1", EventType: "docked", Location: "Bay1", Notes: "Automated detection"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want header plus 2 rows", len(lines))
	}
	if lines[0] != "Time,Truck ID,Event Type,Location,Notes" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "docked") {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	value, err := file.GetCellValue("Shift Report", "C3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if value != "docked" {
		t.Fatalf("C3 = %q, want docked", value)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WritePDF(&buf); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := sampleReport().Write(&buf, "docx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFilename(t *testing.T) {
	if got := sampleReport().Filename(FormatCSV); got != "shift_report_morning_20260831.csv" {
		t.Fatalf("filename = %q", got)
	}
}
