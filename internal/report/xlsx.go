package report

import (
	"io"

	"github.com/x-dv7/p01-lesson05/pkg/models"
	"github.com/xuri/excelize/v2"
)

// defaultSheetName is the worksheet title when none is configured
const defaultSheetName = "File Report"

// XLSXEmitter writes a single-sheet workbook
type XLSXEmitter struct {
	sheetName string
}

// NewXLSXEmitter creates a spreadsheet emitter
func NewXLSXEmitter(sheetName string) *XLSXEmitter {
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	return &XLSXEmitter{sheetName: sheetName}
}

// Format returns "xlsx"
func (e *XLSXEmitter) Format() string {
	return "xlsx"
}

// SheetName returns the worksheet title
func (e *XLSXEmitter) SheetName() string {
	return e.sheetName
}

// Emit writes the workbook. Sizes are stored as numbers.
func (e *XLSXEmitter) Emit(w io.Writer, entries []models.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(e.sheetName)
	if err != nil {
		return err
	}

	// Column widths must be set before the first row
	if err := sw.SetColWidth(1, 1, 60); err != nil {
		return err
	}
	if err := sw.SetColWidth(4, 4, 20); err != nil {
		return err
	}

	header := make([]interface{}, len(models.Headers))
	for i, h := range models.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return err
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{entry.Name, string(entry.Type), entry.Size, entry.Modified}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	return f.Write(w)
}
