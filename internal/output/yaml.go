// internal/output/yaml.go
package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

// YAMLWriter writes the result as a single YAML document.
type YAMLWriter struct {
	Indent int
}

// NewYAMLWriter creates a new YAML writer
func NewYAMLWriter() *YAMLWriter {
	return &YAMLWriter{Indent: 2}
}

func (yw *YAMLWriter) Write(w io.Writer, result *attendance.AttendanceResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yw.Indent)
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func (yw *YAMLWriter) Format() OutputFormat { return FormatYAML }
