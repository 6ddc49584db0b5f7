package pick

import (
	"fmt"
	"time"
)

const (
	ResultPending = "pending"
	ResultWin     = "W"
	ResultLoss    = "L"
	ResultTie     = "T"
)

// Pick is one entry's team selection for one week. The slot key is
// (entry, season, week); at most one pick may exist per slot.
type Pick struct {
	ID           string
	EntryID      string
	SeasonID     string
	MatchID      string
	Week         int
	TeamID       string
	Result       string
	PointsEarned int
	// CreatedAt anchors the anticipation bonus: it is set on first
	// commit and reset on every confirmed replacement.
	CreatedAt time.Time
	UpdatedAt time.Time
	// Version guards concurrent replacements of the same slot.
	Version int
}

func (p Pick) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pick id is required")
	}
	if p.EntryID == "" {
		return fmt.Errorf("pick entry id is required")
	}
	if p.SeasonID == "" {
		return fmt.Errorf("pick season id is required")
	}
	if p.MatchID == "" {
		return fmt.Errorf("pick match id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("pick team id is required")
	}
	if p.Week < 1 {
		return fmt.Errorf("pick week must be >= 1")
	}
	switch p.Result {
	case ResultPending, ResultWin, ResultLoss, ResultTie:
	default:
		return fmt.Errorf("unknown pick result %q", p.Result)
	}

	return nil
}

// Resolved reports whether the scoring resolver has finalized the pick.
func (p Pick) Resolved() bool {
	return p.Result != ResultPending
}
