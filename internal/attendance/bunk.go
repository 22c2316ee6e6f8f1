// internal/attendance/bunk.go - How many classes can be skipped
package attendance

import (
	"fmt"
	"math"
)

// BunkInput describes the current standing and the target.
type BunkInput struct {
	TotalClasses    int     `json:"total_classes"`
	AttendedClasses int     `json:"attended_classes"`
	DesiredPercent  float64 `json:"desired_percentage"`
	ClassesPerWeek  int     `json:"classes_per_week"`
}

// BunkResult is the outcome of the calculation.
type BunkResult struct {
	CurrentPercentage float64 `json:"current_percentage"`
	// MaxBunk is how many of next week's classes may be skipped while staying
	// at or above the target. Negative means that many extra classes must be
	// attended.
	MaxBunk int    `json:"max_bunk"`
	Message string `json:"message"`
}

// Validate requires every input to be positive and the target to be a percentage.
func (in BunkInput) Validate() error {
	switch {
	case in.TotalClasses <= 0:
		return fmt.Errorf("total classes must be positive")
	case in.AttendedClasses <= 0:
		return fmt.Errorf("attended classes must be positive")
	case in.AttendedClasses > in.TotalClasses:
		return fmt.Errorf("attended classes (%d) exceed total classes (%d)", in.AttendedClasses, in.TotalClasses)
	case in.DesiredPercent <= 0 || in.DesiredPercent > 100:
		return fmt.Errorf("desired percentage must be in (0,100]")
	case in.ClassesPerWeek <= 0:
		return fmt.Errorf("classes per week must be positive")
	}
	return nil
}

// MaxBunk returns floor(A + W - D/100*(T + W)).
func MaxBunk(in BunkInput) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	a := float64(in.AttendedClasses)
	w := float64(in.ClassesPerWeek)
	t := float64(in.TotalClasses)
	return int(math.Floor(a + w - in.DesiredPercent/100*(t+w))), nil
}

// CalculateBunk runs MaxBunk and phrases the answer.
func CalculateBunk(in BunkInput) (*BunkResult, error) {
	n, err := MaxBunk(in)
	if err != nil {
		return nil, err
	}

	res := &BunkResult{
		CurrentPercentage: Percentage(in.AttendedClasses, in.TotalClasses),
		MaxBunk:           n,
	}
	switch {
	case n > 0:
		res.Message = fmt.Sprintf("You can bunk %d class(es) next week and stay at %.2f%%", n, in.DesiredPercent)
	case n == 0:
		res.Message = "You cannot bunk any class next week"
	default:
		res.Message = fmt.Sprintf("You need to attend %d more class(es) to reach %.2f%%", -n, in.DesiredPercent)
	}
	return res, nil
}
