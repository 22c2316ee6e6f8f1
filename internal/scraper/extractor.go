// internal/scraper/extractor.go
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/AttendScrapexter/internal/attendance"
	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

// SkipReason explains why a container produced no record.
type SkipReason string

const (
	SkipDecoration SkipReason = "decoration"
	SkipUnnamed    SkipReason = "unnamed"
	SkipMalformed  SkipReason = "malformed"
	SkipPanic      SkipReason = "panic"
)

// SkippedContainer records one container that was left out of the result.
type SkippedContainer struct {
	Index  int        `json:"index"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Extraction is everything the extractor learned from one page snapshot.
type Extraction struct {
	StudentName            string
	Courses                []attendance.CourseRecord
	Skipped                []SkippedContainer
	ContainersSeen         int
	UsedFallbackContainers bool
}

// Extractor turns the attendance page into course records.
type Extractor struct {
	layout Layout
	logger utils.Logger
}

// NewExtractor creates an extractor for layout.
func NewExtractor(layout Layout, logger utils.Logger) *Extractor {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Extractor{layout: layout, logger: logger}
}

// ExtractHTML parses html and extracts from it.
func (e *Extractor) ExtractHTML(html string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return e.Extract(doc), nil
}

// Extract walks every container in document order. A container that cannot
// be turned into a record is skipped and logged; it never aborts the others.
func (e *Extractor) Extract(doc *goquery.Document) *Extraction {
	out := &Extraction{
		StudentName: e.studentName(doc),
		Courses:     make([]attendance.CourseRecord, 0),
	}

	containers, fallback := e.containers(doc)
	out.UsedFallbackContainers = fallback
	out.ContainersSeen = containers.Length()

	containers.Each(func(i int, c *goquery.Selection) {
		res := e.processContainer(i, c)
		switch {
		case res.record != nil:
			out.Courses = append(out.Courses, *res.record)
		case res.skip != nil:
			out.Skipped = append(out.Skipped, *res.skip)
			if res.skip.Reason == SkipDecoration {
				e.logger.Debugf("container %d skipped: %s", i, res.skip.Reason)
			} else {
				e.logger.WithFields(map[string]interface{}{
					"container": i,
					"reason":    string(res.skip.Reason),
				}).Warnf("container skipped: %s", res.skip.Detail)
			}
		}
	})

	if fallback {
		e.logger.Infof("primary container selector matched nothing, used %q", e.layout.Containers[len(e.layout.Containers)-1])
	}
	return out
}

func (e *Extractor) studentName(doc *goquery.Document) string {
	if e.layout.StudentName == "" {
		return attendance.UnknownStudent
	}
	el := doc.Find(e.layout.StudentName).First()
	if el.Length() == 0 {
		return attendance.UnknownStudent
	}
	name, _ := parseName(el.Text())
	if name == "" {
		return attendance.UnknownStudent
	}
	return name
}

// containers returns the first non-empty match of the container selectors
// and whether a selector other than the first produced it.
func (e *Extractor) containers(doc *goquery.Document) (*goquery.Selection, bool) {
	for i, sel := range e.layout.Containers {
		found := doc.Find(sel)
		if found.Length() > 0 {
			return found, i > 0
		}
	}
	return doc.Selection.Slice(0, 0), false
}

// containerResult is the outcome of one container: a record or a skip.
type containerResult struct {
	record *attendance.CourseRecord
	skip   *SkippedContainer
}

func skipped(index int, reason SkipReason, detail string) containerResult {
	return containerResult{skip: &SkippedContainer{Index: index, Reason: reason, Detail: detail}}
}

func (e *Extractor) processContainer(index int, c *goquery.Selection) (res containerResult) {
	defer func() {
		if r := recover(); r != nil {
			res = skipped(index, SkipPanic, fmt.Sprint(r))
		}
	}()

	if e.layout.SkipMarker != "" && c.Find(e.layout.SkipMarker).Length() > 0 {
		return skipped(index, SkipDecoration, "")
	}

	name, err := e.layout.Name.Resolve(c)
	if err != nil {
		return skipped(index, SkipMalformed, recordError("name", err).Error())
	}
	if !name.Found || name.Value == "" {
		return skipped(index, SkipUnnamed, "no course name")
	}

	attended, err := e.layout.Attended.Resolve(c)
	if err != nil {
		return skipped(index, SkipMalformed, recordError(name.Value, err).Error())
	}
	conducted, err := e.layout.Conducted.Resolve(c)
	if err != nil {
		return skipped(index, SkipMalformed, recordError(name.Value, err).Error())
	}

	percentage, err := e.layout.Percentage.Resolve(c)
	if err != nil {
		return skipped(index, SkipMalformed, recordError(name.Value, err).Error())
	}
	pct := percentage.Value
	if !percentage.Found {
		pct = attendance.Percentage(attended.Value, conducted.Value)
	}

	record := attendance.CourseRecord{
		Name:       name.Value,
		Attended:   attended.Value,
		Conducted:  conducted.Value,
		Percentage: pct,
	}
	if err := record.Validate(); err != nil {
		return skipped(index, SkipMalformed, recordError(name.Value, err).Error())
	}
	return containerResult{record: &record}
}

func recordError(course string, err error) error {
	return apperrors.New(apperrors.KindRecordExtraction, "extract "+course, err)
}
