package season

import "fmt"

const DefaultMaxWeeks = 18

// Season is one NFL campaign the pool runs against.
type Season struct {
	ID          string
	Year        int
	IsActive    bool
	CurrentWeek int
	MaxWeeks    int
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.Year < 1970 {
		return fmt.Errorf("season year %d is out of range", s.Year)
	}
	if s.MaxWeeks <= 0 {
		return fmt.Errorf("season max weeks must be > 0")
	}
	if s.CurrentWeek < 1 || s.CurrentWeek > s.MaxWeeks {
		return fmt.Errorf("season current week %d must be within 1..%d", s.CurrentWeek, s.MaxWeeks)
	}

	return nil
}

// ContainsWeek reports whether week is a playable week of the season.
func (s Season) ContainsWeek(week int) bool {
	return week >= 1 && week <= s.MaxWeeks
}
