// internal/scraper/fixtures_test.go
package scraper

import (
	"fmt"
	"strings"
)

// Builders for pages shaped like the portal's ExtJS attendance view.

func portalPage(studentName string, containers ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>MITS IMS</title></head><body>")
	if studentName != "" {
		fmt.Fprintf(&b, `<div class="x-toolbar"><span id="studentName">%s</span></div>`, studentName)
	}
	for _, c := range containers {
		b.WriteString(c)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func fieldset(class string, fields ...string) string {
	classAttr := ""
	if class != "" {
		classAttr = fmt.Sprintf(` class="%s"`, class)
	}
	return fmt.Sprintf(`<fieldset%s><legend>Attendance</legend><div class="x-fieldset-body"><div class="x-column-inner">%s</div></div></fieldset>`,
		classAttr, strings.Join(fields, ""))
}

func displayFieldHTML(id, style, text, spanStyle string) string {
	idAttr := ""
	if id != "" {
		idAttr = fmt.Sprintf(` id="%s"`, id)
	}
	span := "<span>"
	if spanStyle != "" {
		span = fmt.Sprintf(`<span style="%s">`, spanStyle)
	}
	return fmt.Sprintf(`<div class="x-field x-form-item"%s style="%s"><div class="x-form-display-field">%s%s</span></div></div>`,
		idAttr, style, span, text)
}

// courseRow renders a course in the primary markup. An empty pct omits the
// percentage column entirely.
func courseRow(name, attended, conducted, pct string) string {
	fields := []string{
		displayFieldHTML("displayfield-1011", "width: 50px;", "1", ""),
		displayFieldHTML("displayfield-1012", "width: 150px;", name, ""),
		displayFieldHTML("displayfield-1013", "width: 200px;", attended, ""),
		displayFieldHTML("displayfield-1014", "width: 200px;", conducted, ""),
	}
	if pct != "" {
		fields = append(fields, displayFieldHTML("displayfield-1015", "width: 100px;", pct, "color:green;font-weight:bold"))
	}
	return fieldset("x-fieldset x-fieldset-default", fields...)
}

// legacyCourseRow renders a course that only the fallback selectors match.
func legacyCourseRow(name, attended, conducted, pct string) string {
	return fieldset("x-fieldset",
		displayFieldHTML("", "width: 40px;", "1", ""),
		displayFieldHTML("", "width: 180px;", name, ""),
		displayFieldHTML("", "width: 200px;", attended, ""),
		displayFieldHTML("", "width: 200px;", conducted, ""),
		displayFieldHTML("", "width: 100px;", pct, ""),
	)
}

func headerRow() string {
	return fieldset("x-fieldset",
		displayFieldHTML("displayfield-1001", "width: 50px;", "S.No", "color:blue"),
		displayFieldHTML("displayfield-1002", "width: 150px;", "Subject", "color:blue"),
		displayFieldHTML("displayfield-1003", "width: 200px;", "Attended", "color:blue"),
		displayFieldHTML("displayfield-1004", "width: 200px;", "Conducted", "color:blue"),
		displayFieldHTML("displayfield-1005", "width: 100px;", "%", "color:blue"),
	)
}
