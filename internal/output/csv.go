// internal/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

// CSVWriter writes one row per course followed by an OVERALL row.
type CSVWriter struct {
	Delimiter rune
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{Delimiter: ','}
}

func (cw *CSVWriter) Write(w io.Writer, result *attendance.AttendanceResult) error {
	writer := csv.NewWriter(w)
	if cw.Delimiter != 0 {
		writer.Comma = cw.Delimiter
	}

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, c := range result.Courses {
		if err := writer.Write([]string{
			c.Name,
			strconv.Itoa(c.Attended),
			strconv.Itoa(c.Conducted),
			formatPercent(c.Percentage),
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	attended, conducted := result.Totals()
	if err := writer.Write([]string{
		overallLabel,
		strconv.Itoa(attended),
		strconv.Itoa(conducted),
		formatPercent(result.OverallPercentage),
	}); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

func (cw *CSVWriter) Format() OutputFormat { return FormatCSV }

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
