package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"medtrack/internal/model"
)

// SheetName is the single worksheet of a procedure export.
const SheetName = "Procedure Records"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var columns = []struct {
	header string
	width  float64
}{
	{"Date", 12},
	{"Time", 10},
	{"Procedure Name", 30},
	{"Notes", 50},
}

// WriteProcedureRecords writes records, in the given order, as an xlsx
// workbook. Times are shown in loc.
func WriteProcedureRecords(w io.Writer, records []model.ProcedureRecord, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, c.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
		header[i] = c.header
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		notes := ""
		if r.Notes != nil {
			notes = *r.Notes
		}
		row := []interface{}{
			time.Time(r.ProcedureDate).Format("02/01/2006"),
			r.PerformedAt.In(loc).Format("15:04"),
			r.ProcedureName,
			notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
