// internal/output/types.go
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

// OutputFormat represents supported output formats
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatXLSX OutputFormat = "xlsx"
	FormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats returns all valid output format values
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatJSON, FormatCSV, FormatXLSX, FormatYAML}
}

// ParseFormat accepts a format name case-insensitively. "yml" and "excel" are aliases.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (valid: %v)", s, ValidOutputFormats())
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (OutputFormat, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Writer renders one attendance result.
type Writer interface {
	Write(w io.Writer, result *attendance.AttendanceResult) error
	Format() OutputFormat
}

// overallLabel names the summary row in tabular formats.
const overallLabel = "OVERALL"

var columns = []string{"course", "attended", "conducted", "percentage"}
