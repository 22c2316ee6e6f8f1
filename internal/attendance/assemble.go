// internal/attendance/assemble.go
package attendance

import "math"

// Assemble builds the result for a scrape. The username is echoed as the roll
// number; the portal page does not expose one separately.
func Assemble(studentName, rollNumber string, courses []CourseRecord) *AttendanceResult {
	if studentName == "" {
		studentName = UnknownStudent
	}
	out := make([]CourseRecord, len(courses))
	copy(out, courses)

	return &AttendanceResult{
		StudentName:       studentName,
		RollNumber:        rollNumber,
		OverallPercentage: OverallPercentage(out),
		Courses:           out,
	}
}

// OverallPercentage is the weighted aggregate Σattended/Σconducted, not the
// mean of the per-course percentages.
func OverallPercentage(courses []CourseRecord) float64 {
	var attended, conducted int
	for _, c := range courses {
		attended += c.Attended
		conducted += c.Conducted
	}
	return Percentage(attended, conducted)
}

// Percentage returns attended/conducted*100 rounded to two decimals, or 0 when
// nothing was conducted.
func Percentage(attended, conducted int) float64 {
	if conducted <= 0 {
		return 0
	}
	return Round2(float64(attended) / float64(conducted) * 100)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
