package survivor

import (
	"errors"
	"fmt"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
)

var (
	ErrTeamAlreadyUsed         = errors.New("team already used this season")
	ErrMatchAlreadyStarted     = errors.New("match already started")
	ErrCannotChangeStartedPick = errors.New("cannot change a pick whose match already started")
)

// Candidate is a proposed weekly selection to validate.
type Candidate struct {
	Week   int
	Match  match.Match
	TeamID string
}

// CheckEligibility applies the weekly pick rules in order; the first
// failing rule wins. usedTeams is the entry's full team-usage ledger for
// the season, including the team of existing (if any): re-selecting the
// same week's own team is not a reuse violation, so that team is
// discounted here rather than by the caller.
//
// The check is a pure predicate over already-fetched state and the
// clock. Callers must re-run it immediately before commit to close the
// race between display and submission.
func CheckEligibility(
	cand Candidate,
	existing *pick.Pick,
	existingMatch *match.Match,
	usedTeams map[string]struct{},
	now time.Time,
) error {
	if used := teamUsedElsewhere(cand, existing, usedTeams); used {
		return fmt.Errorf("%w: team=%s", ErrTeamAlreadyUsed, cand.TeamID)
	}

	if cand.Match.Started(now) {
		return fmt.Errorf("%w: match=%s kickoff=%s", ErrMatchAlreadyStarted, cand.Match.ID, cand.Match.KickoffAt.UTC().Format(time.RFC3339))
	}

	if existing != nil && existingMatch != nil && existing.MatchID != cand.Match.ID {
		if existingMatch.Started(now) {
			return fmt.Errorf("%w: match=%s", ErrCannotChangeStartedPick, existingMatch.ID)
		}
	}

	return nil
}

func teamUsedElsewhere(cand Candidate, existing *pick.Pick, usedTeams map[string]struct{}) bool {
	if _, ok := usedTeams[cand.TeamID]; !ok {
		return false
	}
	// Toggling back to the team provisionally held for the same week is
	// allowed; only commitments from other weeks block the candidate.
	if existing != nil && existing.Week == cand.Week && existing.TeamID == cand.TeamID {
		return false
	}
	return true
}
