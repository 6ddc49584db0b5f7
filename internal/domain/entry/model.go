package entry

import "fmt"

const (
	StatusAlive      = "alive"
	StatusLastChance = "last_chance"
	StatusEliminated = "eliminated"
)

// Entry is one competitive slot a user controls within a season.
type Entry struct {
	ID             string
	UserID         string
	SeasonID       string
	Name           string
	Status         string
	Points         int
	TotalWins      int
	TotalLosses    int
	TotalTies      int
	CurrentStreak  int
	LongestStreak  int
	IsActive       bool
	EliminatedWeek *int
}

// StatusForLosses derives the survivor status from the loss count.
// Zero losses keeps the entry alive, one loss moves it to last chance,
// two or more eliminate it. Status never regresses through scoring runs
// because the loss count is monotonic.
func StatusForLosses(lossCount int) string {
	switch {
	case lossCount <= 0:
		return StatusAlive
	case lossCount == 1:
		return StatusLastChance
	default:
		return StatusEliminated
	}
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("entry user id is required")
	}
	if e.SeasonID == "" {
		return fmt.Errorf("entry season id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("entry name is required")
	}
	switch e.Status {
	case StatusAlive, StatusLastChance, StatusEliminated:
	default:
		return fmt.Errorf("unknown entry status %q", e.Status)
	}

	return nil
}

// Aggregates is the scored state written back by the resolver.
type Aggregates struct {
	Points         int
	TotalWins      int
	TotalLosses    int
	TotalTies      int
	CurrentStreak  int
	LongestStreak  int
	Status         string
	IsActive       bool
	EliminatedWeek *int
}
