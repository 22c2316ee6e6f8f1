// internal/attendance/types.go
package attendance

import "fmt"

// UnknownStudent is used when the portal page carries no student name.
const UnknownStudent = "Unknown"

// CourseRecord holds one course's attendance counters.
type CourseRecord struct {
	Name       string  `json:"name" yaml:"name"`
	Attended   int     `json:"attended" yaml:"attended"`
	Conducted  int     `json:"conducted" yaml:"conducted"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Validate checks the record's numeric invariants.
func (c CourseRecord) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("course name is empty")
	}
	if c.Attended < 0 {
		return fmt.Errorf("course %q: attended %d is negative", c.Name, c.Attended)
	}
	if c.Conducted < 0 {
		return fmt.Errorf("course %q: conducted %d is negative", c.Name, c.Conducted)
	}
	if c.Percentage < 0 || c.Percentage > 100 {
		return fmt.Errorf("course %q: percentage %.2f outside [0,100]", c.Name, c.Percentage)
	}
	return nil
}

// AttendanceResult is the complete answer for one scrape request.
type AttendanceResult struct {
	StudentName       string         `json:"student_name" yaml:"student_name"`
	RollNumber        string         `json:"roll_number" yaml:"roll_number"`
	OverallPercentage float64        `json:"overall_percentage" yaml:"overall_percentage"`
	Courses           []CourseRecord `json:"courses" yaml:"courses"`
}

// Totals returns the summed attended and conducted counts.
func (r *AttendanceResult) Totals() (attended, conducted int) {
	for _, c := range r.Courses {
		attended += c.Attended
		conducted += c.Conducted
	}
	return attended, conducted
}
