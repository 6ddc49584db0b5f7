package survivor

import (
	"errors"
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
)

func completedMatch(home, away string, homeScore, awayScore int) match.Match {
	return match.Match{
		ID:         "m1",
		SeasonID:   "2025",
		Week:       5,
		HomeTeamID: home,
		AwayTeamID: away,
		KickoffAt:  kickoff,
		Status:     match.StatusCompleted,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
	}
}

func TestOutcome_HomeWin(t *testing.T) {
	t.Parallel()

	m := completedMatch("kc", "lv", 24, 17)

	got, err := Outcome(m, "kc")
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if got != pick.ResultWin {
		t.Fatalf("unexpected result: got=%s want=%s", got, pick.ResultWin)
	}

	got, err = Outcome(m, "lv")
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if got != pick.ResultLoss {
		t.Fatalf("unexpected result: got=%s want=%s", got, pick.ResultLoss)
	}
}

func TestOutcome_Tie(t *testing.T) {
	t.Parallel()

	got, err := Outcome(completedMatch("kc", "lv", 20, 20), "lv")
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if got != pick.ResultTie {
		t.Fatalf("unexpected result: got=%s want=%s", got, pick.ResultTie)
	}
}

func TestOutcome_RejectsNonCompletedMatch(t *testing.T) {
	t.Parallel()

	m := completedMatch("kc", "lv", 24, 17)
	m.Status = match.StatusInProgress

	if _, err := Outcome(m, "kc"); !errors.Is(err, ErrMatchNotCompleted) {
		t.Fatalf("expected ErrMatchNotCompleted, got %v", err)
	}
}

func TestOutcome_RejectsTeamOutsideMatch(t *testing.T) {
	t.Parallel()

	if _, err := Outcome(completedMatch("kc", "lv", 24, 17), "buf"); !errors.Is(err, ErrTeamNotInMatch) {
		t.Fatalf("expected ErrTeamNotInMatch, got %v", err)
	}
}

func TestAnticipationHours(t *testing.T) {
	t.Parallel()

	if got := AnticipationHours(kickoff.Add(-10*time.Hour), kickoff); got != 10 {
		t.Fatalf("unexpected hours: got=%d want=10", got)
	}
	if got := AnticipationHours(kickoff.Add(-90*time.Minute), kickoff); got != 1 {
		t.Fatalf("fractional hours must floor: got=%d want=1", got)
	}
	if got := AnticipationHours(kickoff.Add(time.Hour), kickoff); got != 0 {
		t.Fatalf("post-kickoff anchor must floor at zero: got=%d want=0", got)
	}
}

func TestPointsFor(t *testing.T) {
	t.Parallel()

	if got := PointsFor(pick.ResultWin, 10); got != 10 {
		t.Fatalf("unexpected win points: got=%d want=10", got)
	}
	if got := PointsFor(pick.ResultLoss, 48); got != LossPenalty {
		t.Fatalf("loss must cost the fixed penalty: got=%d want=%d", got, LossPenalty)
	}
	if got := PointsFor(pick.ResultTie, 48); got != 0 {
		t.Fatalf("tie must be neutral: got=%d want=0", got)
	}
}

func TestAggregateEntry_StreaksAndStatus(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{
		{Week: 1, Result: pick.ResultWin, PointsEarned: 24},
		{Week: 2, Result: pick.ResultWin, PointsEarned: 12},
		{Week: 3, Result: pick.ResultLoss, PointsEarned: LossPenalty},
		{Week: 4, Result: pick.ResultTie, PointsEarned: 0},
		{Week: 5, Result: pick.ResultWin, PointsEarned: 6},
	}

	agg := AggregateEntry(picks)
	if agg.TotalWins != 3 || agg.TotalLosses != 1 || agg.TotalTies != 1 {
		t.Fatalf("unexpected record: wins=%d losses=%d ties=%d", agg.TotalWins, agg.TotalLosses, agg.TotalTies)
	}
	if agg.Points != 24+12+LossPenalty+0+6 {
		t.Fatalf("unexpected points: got=%d want=%d", agg.Points, 24+12+LossPenalty+6)
	}
	if agg.CurrentStreak != 1 || agg.LongestStreak != 2 {
		t.Fatalf("unexpected streaks: current=%d longest=%d", agg.CurrentStreak, agg.LongestStreak)
	}
	if agg.Status != entry.StatusLastChance || !agg.IsActive {
		t.Fatalf("one loss must mean last chance: status=%s active=%t", agg.Status, agg.IsActive)
	}
	if agg.EliminatedWeek != nil {
		t.Fatalf("entry with one loss must not carry an eliminated week")
	}
}

func TestAggregateEntry_SecondLossEliminates(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{
		{Week: 1, Result: pick.ResultLoss, PointsEarned: LossPenalty},
		{Week: 2, Result: pick.ResultLoss, PointsEarned: LossPenalty},
		{Week: 3, Result: pick.ResultPending},
	}

	agg := AggregateEntry(picks)
	if agg.Status != entry.StatusEliminated || agg.IsActive {
		t.Fatalf("two losses must eliminate: status=%s active=%t", agg.Status, agg.IsActive)
	}
	if agg.EliminatedWeek == nil || *agg.EliminatedWeek != 2 {
		t.Fatalf("unexpected eliminated week: got=%v want=2", agg.EliminatedWeek)
	}
}

func TestAggregateEntry_TiesNeverCountAsLosses(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{
		{Week: 1, Result: pick.ResultTie},
		{Week: 2, Result: pick.ResultTie},
		{Week: 3, Result: pick.ResultTie},
	}

	agg := AggregateEntry(picks)
	if agg.Status != entry.StatusAlive {
		t.Fatalf("ties must preserve entry life: status=%s", agg.Status)
	}
}

func TestStatusForLosses_Monotonic(t *testing.T) {
	t.Parallel()

	want := []string{entry.StatusAlive, entry.StatusLastChance, entry.StatusEliminated, entry.StatusEliminated}
	for losses, expected := range want {
		if got := entry.StatusForLosses(losses); got != expected {
			t.Fatalf("unexpected status for %d losses: got=%s want=%s", losses, got, expected)
		}
	}
}
