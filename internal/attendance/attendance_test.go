// internal/attendance/attendance_test.go
package attendance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverallPercentage_IsWeighted(t *testing.T) {
	tests := []struct {
		name    string
		courses []CourseRecord
		want    float64
	}{
		{
			name:    "equal ratios",
			courses: []CourseRecord{{Name: "A", Attended: 9, Conducted: 10}, {Name: "B", Attended: 18, Conducted: 20}},
			want:    90.0,
		},
		{
			name:    "unequal weights",
			courses: []CourseRecord{{Name: "A", Attended: 5, Conducted: 10}, {Name: "B", Attended: 18, Conducted: 20}},
			want:    76.67,
		},
		{
			name:    "nothing conducted",
			courses: []CourseRecord{{Name: "A"}, {Name: "B"}},
			want:    0,
		},
		{
			name: "empty",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallPercentage(tt.courses))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 76.67, Round2(23.0/30.0*100))
	assert.Equal(t, 33.33, Round2(100.0/3.0))
	assert.Equal(t, 90.0, Round2(90))
}

func TestAssemble(t *testing.T) {
	courses := []CourseRecord{
		{Name: "Maths", Attended: 18, Conducted: 20, Percentage: 90},
		{Name: "Physics", Attended: 5, Conducted: 10, Percentage: 50},
	}

	res := Assemble("", "21691A0501", courses)
	assert.Equal(t, UnknownStudent, res.StudentName)
	assert.Equal(t, "21691A0501", res.RollNumber)
	assert.Equal(t, 76.67, res.OverallPercentage)
	assert.Equal(t, courses, res.Courses)

	courses[0].Name = "changed"
	assert.Equal(t, "Maths", res.Courses[0].Name, "result must not alias the input slice")

	attended, conducted := res.Totals()
	assert.Equal(t, 23, attended)
	assert.Equal(t, 30, conducted)
}

func TestAssemble_EmptyCoursesSerialiseAsArray(t *testing.T) {
	res := Assemble("Ravi", "21691A0501", nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"student_name":"Ravi","roll_number":"21691A0501","overall_percentage":0,"courses":[]}`, string(data))
}

func TestCourseRecord_Validate(t *testing.T) {
	assert.NoError(t, CourseRecord{Name: "Maths", Attended: 18, Conducted: 20, Percentage: 90}.Validate())
	assert.Error(t, CourseRecord{Name: "", Attended: 1, Conducted: 1}.Validate())
	assert.Error(t, CourseRecord{Name: "X", Attended: -1}.Validate())
	assert.Error(t, CourseRecord{Name: "X", Percentage: 100.5}.Validate())
}

func TestCalculateBunk(t *testing.T) {
	tests := []struct {
		name    string
		in      BunkInput
		want    int
		wantErr bool
	}{
		// floor(90 + 10 - 0.75*110) = floor(17.5)
		{name: "surplus", in: BunkInput{TotalClasses: 100, AttendedClasses: 90, DesiredPercent: 75, ClassesPerWeek: 10}, want: 17},
		// floor(60 + 10 - 0.75*110) = floor(-12.5)
		{name: "deficit", in: BunkInput{TotalClasses: 100, AttendedClasses: 60, DesiredPercent: 75, ClassesPerWeek: 10}, want: -13},
		{name: "zero total", in: BunkInput{TotalClasses: 0, AttendedClasses: 1, DesiredPercent: 75, ClassesPerWeek: 1}, wantErr: true},
		{name: "attended above total", in: BunkInput{TotalClasses: 10, AttendedClasses: 11, DesiredPercent: 75, ClassesPerWeek: 1}, wantErr: true},
		{name: "target above 100", in: BunkInput{TotalClasses: 10, AttendedClasses: 5, DesiredPercent: 120, ClassesPerWeek: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CalculateBunk(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.MaxBunk)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestCalculateBunk_CurrentPercentage(t *testing.T) {
	res, err := CalculateBunk(BunkInput{TotalClasses: 30, AttendedClasses: 23, DesiredPercent: 75, ClassesPerWeek: 5})
	require.NoError(t, err)
	assert.Equal(t, 76.67, res.CurrentPercentage)
	// floor(23 + 5 - 0.75*35) = floor(1.75)
	assert.Equal(t, 1, res.MaxBunk)
}
