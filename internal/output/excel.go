// internal/output/excel.go
package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

// ExcelConfig configuration for Excel output
type ExcelConfig struct {
	SheetName  string
	FreezePane bool
	AutoFilter bool
}

// ExcelWriter writes an .xlsx workbook with a styled header, one row per
// course and a bold OVERALL row.
type ExcelWriter struct {
	config ExcelConfig
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(config ExcelConfig) *ExcelWriter {
	if config.SheetName == "" {
		config.SheetName = "Attendance"
	}
	return &ExcelWriter{config: config}
}

func (ew *ExcelWriter) Format() OutputFormat { return FormatXLSX }

func (ew *ExcelWriter) Write(w io.Writer, result *attendance.AttendanceResult) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := ew.config.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", "Student"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "B1", result.StudentName); err != nil {
		return err
	}
	if result.RollNumber != "" {
		if err := f.SetCellValue(sheet, "C1", result.RollNumber); err != nil {
			return err
		}
	}

	const headerRow = 3
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A3", "D3", styles.header); err != nil {
		return err
	}

	row := headerRow + 1
	for _, c := range result.Courses {
		if err := ew.writeRow(f, sheet, row, c.Name, c.Attended, c.Conducted, c.Percentage, styles.percent); err != nil {
			return err
		}
		row++
	}

	attended, conducted := result.Totals()
	if err := ew.writeRow(f, sheet, row, overallLabel, attended, conducted, result.OverallPercentage, styles.overallPercent); err != nil {
		return err
	}
	last := fmt.Sprintf("C%d", row)
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), last, styles.overall); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "D", 14); err != nil {
		return err
	}

	if ew.config.AutoFilter && len(result.Courses) > 0 {
		if err := f.AutoFilter(sheet, fmt.Sprintf("A%d:D%d", headerRow, row-1), nil); err != nil {
			return err
		}
	}
	if ew.config.FreezePane {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (ew *ExcelWriter) writeRow(f *excelize.File, sheet string, row int, name string, attended, conducted int, pct float64, pctStyle int) error {
	values := []interface{}{name, attended, conducted, pct / 100}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	cell, _ := excelize.CoordinatesToCellName(4, row)
	return f.SetCellStyle(sheet, cell, cell, pctStyle)
}

type excelStyles struct {
	header         int
	percent        int
	overall        int
	overallPercent int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 12},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: border,
	}); err != nil {
		return s, err
	}
	// 10 is the builtin "0.00%" format.
	if s.percent, err = f.NewStyle(&excelize.Style{NumFmt: 10}); err != nil {
		return s, err
	}
	if s.overall, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 2}},
	}); err != nil {
		return s, err
	}
	s.overallPercent, err = f.NewStyle(&excelize.Style{
		NumFmt: 10,
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 2}},
	})
	return s, err
}
