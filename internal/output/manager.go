// internal/output/manager.go
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

// Manager dispatches to a writer by format.
type Manager struct {
	writers map[OutputFormat]Writer
}

// NewManager creates a manager with every built-in writer registered.
func NewManager() *Manager {
	m := &Manager{writers: make(map[OutputFormat]Writer)}
	m.Register(NewJSONWriter())
	m.Register(NewCSVWriter())
	m.Register(NewYAMLWriter())
	m.Register(NewExcelWriter(ExcelConfig{FreezePane: true, AutoFilter: true}))
	return m
}

// Register adds or replaces the writer for w.Format().
func (m *Manager) Register(w Writer) {
	m.writers[w.Format()] = w
}

// GetWriter returns the writer for format
func (m *Manager) GetWriter(format OutputFormat) (Writer, error) {
	w, ok := m.writers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return w, nil
}

// Write renders result to w.
func (m *Manager) Write(format OutputFormat, w io.Writer, result *attendance.AttendanceResult) error {
	if result == nil {
		return fmt.Errorf("no attendance result to write")
	}
	writer, err := m.GetWriter(format)
	if err != nil {
		return err
	}
	return writer.Write(w, result)
}

// WriteFile renders result to path. The file is only left behind on success.
func (m *Manager) WriteFile(format OutputFormat, path string, result *attendance.AttendanceResult) error {
	writer, err := m.GetWriter(format)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("no attendance result to write")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writer.Write(file, result); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	return file.Close()
}
