package survivor

import (
	"errors"
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
)

var kickoff = time.Date(2025, 10, 5, 17, 0, 0, 0, time.UTC)

func scheduledMatch(id, home, away string, kickoffAt time.Time) match.Match {
	return match.Match{
		ID:         id,
		SeasonID:   "2025",
		Week:       5,
		HomeTeamID: home,
		AwayTeamID: away,
		KickoffAt:  kickoffAt,
		Status:     match.StatusScheduled,
	}
}

func TestCheckEligibility_AllowsFreshPick(t *testing.T) {
	t.Parallel()

	cand := Candidate{
		Week:   5,
		Match:  scheduledMatch("m1", "kc", "lv", kickoff),
		TeamID: "kc",
	}

	err := CheckEligibility(cand, nil, nil, map[string]struct{}{"buf": {}}, kickoff.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("check eligibility: %v", err)
	}
}

func TestCheckEligibility_RejectsTeamUsedInAnotherWeek(t *testing.T) {
	t.Parallel()

	cand := Candidate{
		Week:   5,
		Match:  scheduledMatch("m1", "kc", "lv", kickoff),
		TeamID: "kc",
	}

	used := map[string]struct{}{"kc": {}}
	err := CheckEligibility(cand, nil, nil, used, kickoff.Add(-48*time.Hour))
	if !errors.Is(err, ErrTeamAlreadyUsed) {
		t.Fatalf("expected ErrTeamAlreadyUsed, got %v", err)
	}
}

func TestCheckEligibility_AllowsTogglingBackToSameWeekTeam(t *testing.T) {
	t.Parallel()

	m := scheduledMatch("m1", "kc", "lv", kickoff)
	existing := &pick.Pick{ID: "p1", Week: 5, MatchID: "m1", TeamID: "kc", Result: pick.ResultPending}
	cand := Candidate{Week: 5, Match: m, TeamID: "kc"}

	used := map[string]struct{}{"kc": {}, "buf": {}}
	err := CheckEligibility(cand, existing, &m, used, kickoff.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("check eligibility: %v", err)
	}
}

func TestCheckEligibility_RejectsStartedCandidateMatch(t *testing.T) {
	t.Parallel()

	cand := Candidate{
		Week:   5,
		Match:  scheduledMatch("m1", "kc", "lv", kickoff),
		TeamID: "kc",
	}

	err := CheckEligibility(cand, nil, nil, nil, kickoff)
	if !errors.Is(err, ErrMatchAlreadyStarted) {
		t.Fatalf("expected ErrMatchAlreadyStarted at kickoff instant, got %v", err)
	}
}

func TestCheckEligibility_RejectsReplacingStartedPick(t *testing.T) {
	t.Parallel()

	started := scheduledMatch("m1", "kc", "lv", kickoff.Add(-time.Hour))
	existing := &pick.Pick{ID: "p1", Week: 5, MatchID: "m1", TeamID: "kc", Result: pick.ResultPending}

	later := scheduledMatch("m2", "dal", "nyg", kickoff.Add(3*time.Hour))
	cand := Candidate{Week: 5, Match: later, TeamID: "dal"}

	err := CheckEligibility(cand, existing, &started, map[string]struct{}{"kc": {}}, kickoff)
	if !errors.Is(err, ErrCannotChangeStartedPick) {
		t.Fatalf("expected ErrCannotChangeStartedPick, got %v", err)
	}
}

func TestCheckEligibility_RuleOrderTeamUsedWinsOverTiming(t *testing.T) {
	t.Parallel()

	started := scheduledMatch("m1", "kc", "lv", kickoff.Add(-time.Hour))
	cand := Candidate{Week: 5, Match: started, TeamID: "buf"}

	err := CheckEligibility(cand, nil, nil, map[string]struct{}{"buf": {}}, kickoff)
	if !errors.Is(err, ErrTeamAlreadyUsed) {
		t.Fatalf("expected ErrTeamAlreadyUsed to win over kickoff rule, got %v", err)
	}
}
