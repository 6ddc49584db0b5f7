package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "SCHEDULED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusPostponed  = "POSTPONED"
)

// Match is one scheduled NFL game.
type Match struct {
	ID         string
	SeasonID   string
	Week       int
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsCompletedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCompleted, "FINAL", "FT":
		return true
	default:
		return false
	}
}

func IsPostponedLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusPostponed, "CANCELLED", "SUSPENDED":
		return true
	default:
		return false
	}
}

// Completed reports whether the match has a final result attached.
// Scores are non-nil iff the status is completed.
func (m Match) Completed() bool {
	return IsCompletedStatus(m.Status) && m.HomeScore != nil && m.AwayScore != nil
}

// Started reports whether kickoff has passed at the given instant.
func (m Match) Started(now time.Time) bool {
	return !now.Before(m.KickoffAt)
}

// HasTeam reports whether teamID plays in the match.
func (m Match) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == m.HomeTeamID || teamID == m.AwayTeamID)
}

// Opponent returns the other side of the match for teamID.
func (m Match) Opponent(teamID string) string {
	switch teamID {
	case m.HomeTeamID:
		return m.AwayTeamID
	case m.AwayTeamID:
		return m.HomeTeamID
	default:
		return ""
	}
}
