// Package export renders bookings into Excel workbooks.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"familybooking/internal/family"
	"familybooking/internal/models"
	"familybooking/internal/timeslot"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

var headers = []string{"Date", "Day", "Pickup", "Dropoff", "Family member", "Location", "Booking ID"}

// RangeLister is the slice of the store the exporter reads from.
type RangeLister interface {
	ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error)
}

type Exporter struct {
	dir      string
	registry *family.Registry
	logger   *zerolog.Logger
}

func NewExporter(dir string, registry *family.Registry, logger *zerolog.Logger) *Exporter {
	if registry == nil {
		registry = family.Default()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Exporter{dir: dir, registry: registry, logger: logger}
}

// Write renders bookings, ordered by start, as a workbook into w.
// from and to only label the period row; either may be empty.
func (e *Exporter) Write(w io.Writer, bookings []models.Booking, from, to string) error {
	f, err := e.build(bookings, from, to)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// ExportToFile writes the bookings within [from, to] to a file under the
// export directory and returns its path.
func (e *Exporter) ExportToFile(ctx context.Context, lister RangeLister, from, to string) (string, error) {
	bookings, err := lister.ListByDateRange(ctx, from, to)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := e.build(bookings, from, to)
	if err != nil {
		return "", err
	}
	defer f.Close()

	filePath := filepath.Join(e.dir, FileName(from, to))
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

// FileName names an export for the given period.
func FileName(from, to string) string {
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = "end"
	}
	return fmt.Sprintf("bookings_%s_to_%s.xlsx", from, to)
}

func (e *Exporter) build(bookings []models.Booking, from, to string) (*excelize.File, error) {
	sorted := append([]models.Booking(nil), bookings...)
	models.SortByStart(sorted)

	f := excelize.NewFile()
	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(SheetName, "A1", periodTitle(from, to))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	e.writeHeaders(f)
	e.writeRows(f, sorted)

	_ = f.SetColWidth(SheetName, "A", "D", 14)
	_ = f.SetColWidth(SheetName, "E", "E", 18)
	_ = f.SetColWidth(SheetName, "F", "F", 30)
	_ = f.SetColWidth(SheetName, "G", "G", 38)
	return f, nil
}

func (e *Exporter) writeHeaders(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, style)
	}
}

func (e *Exporter) writeRows(f *excelize.File, bookings []models.Booking) {
	for i, b := range bookings {
		row := i + 3
		day := ""
		if t, err := timeslot.ParseDate(b.Date); err == nil {
			day = t.Weekday().String()
		}

		values := []interface{}{
			b.Date,
			day,
			displayTime(b.PickupTime),
			displayTime(b.DropoffTime),
			e.registry.DisplayName(b.FamilyMember),
			b.Location,
			b.ID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		cell, _ := excelize.CoordinatesToCellName(5, row)
		style, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{e.registry.DisplayColor(b.FamilyMember)}, Pattern: 1},
			Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		})
		_ = f.SetCellStyle(SheetName, cell, cell, style)
	}
}

func displayTime(hhmm string) string {
	if s, err := timeslot.FormatTimeForDisplay(hhmm); err == nil {
		return s
	}
	return hhmm
}

func periodTitle(from, to string) string {
	switch {
	case from == "" && to == "":
		return "All bookings"
	case to == "":
		return "Bookings from " + from
	case from == "":
		return "Bookings until " + to
	default:
		return fmt.Sprintf("Bookings %s - %s", from, to)
	}
}
