package survivor

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
)

// LossPenalty is the fixed points delta for a losing pick, regardless of
// how early it was locked in.
const LossPenalty = -300

var (
	ErrMatchNotCompleted = errors.New("match is not completed")
	ErrTeamNotInMatch    = errors.New("selected team does not play in match")
)

// Outcome returns the pick result for teamID in a completed match.
func Outcome(m match.Match, teamID string) (string, error) {
	if !m.Completed() {
		return "", fmt.Errorf("%w: match=%s status=%s", ErrMatchNotCompleted, m.ID, m.Status)
	}
	if !m.HasTeam(teamID) {
		return "", fmt.Errorf("%w: match=%s team=%s", ErrTeamNotInMatch, m.ID, teamID)
	}

	own, opp := *m.HomeScore, *m.AwayScore
	if teamID == m.AwayTeamID {
		own, opp = opp, own
	}

	switch {
	case own > opp:
		return pick.ResultWin, nil
	case own < opp:
		return pick.ResultLoss, nil
	default:
		return pick.ResultTie, nil
	}
}

// AnticipationHours is the whole number of hours between the moment a
// pick was locked in and kickoff, floored at zero. Picks made after
// kickoff cannot be committed, but the floor guards against clock skew
// in historical data.
func AnticipationHours(createdAt, kickoff time.Time) int {
	if createdAt.IsZero() || kickoff.IsZero() {
		return 0
	}
	hours := int(kickoff.Sub(createdAt).Hours())
	if hours < 0 {
		return 0
	}
	return hours
}

// PointsFor maps a resolved outcome to its points delta. A win pays the
// anticipation bonus, a loss costs the fixed penalty, a tie is neutral
// and preserves entry life.
func PointsFor(result string, anticipationHours int) int {
	switch result {
	case pick.ResultWin:
		if anticipationHours < 0 {
			return 0
		}
		return anticipationHours
	case pick.ResultLoss:
		return LossPenalty
	default:
		return 0
	}
}

// AggregateEntry folds an entry's resolved picks into its scored state.
// Picks are walked in week order: wins extend the streak, losses reset
// it and advance the elimination ladder, ties reset the streak without
// counting as a loss. Pending picks are ignored.
func AggregateEntry(picks []pick.Pick) entry.Aggregates {
	ordered := append([]pick.Pick(nil), picks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Week < ordered[j].Week
	})

	agg := entry.Aggregates{
		Status:   entry.StatusAlive,
		IsActive: true,
	}

	for _, p := range ordered {
		if !p.Resolved() {
			continue
		}
		agg.Points += p.PointsEarned

		switch p.Result {
		case pick.ResultWin:
			agg.TotalWins++
			agg.CurrentStreak++
			if agg.CurrentStreak > agg.LongestStreak {
				agg.LongestStreak = agg.CurrentStreak
			}
		case pick.ResultLoss:
			agg.TotalLosses++
			agg.CurrentStreak = 0
			if agg.TotalLosses >= 2 && agg.EliminatedWeek == nil {
				week := p.Week
				agg.EliminatedWeek = &week
			}
		case pick.ResultTie:
			agg.TotalTies++
			agg.CurrentStreak = 0
		}
	}

	agg.Status = entry.StatusForLosses(agg.TotalLosses)
	agg.IsActive = agg.Status != entry.StatusEliminated

	return agg
}
