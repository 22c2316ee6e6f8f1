// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

// JSONWriter writes the result in the same shape the HTTP API returns.
type JSONWriter struct {
	Indent string
}

// NewJSONWriter creates a new JSON writer
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{Indent: "  "}
}

// Write encodes result to w
func (jw *JSONWriter) Write(w io.Writer, result *attendance.AttendanceResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", jw.Indent)
	return encoder.Encode(result)
}

func (jw *JSONWriter) Format() OutputFormat { return FormatJSON }
