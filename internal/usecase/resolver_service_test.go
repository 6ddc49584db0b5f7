package usecase

import (
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/nflsurvivor/survivor-pool/internal/domain/survivor"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/memory"
	idgen "github.com/nflsurvivor/survivor-pool/internal/platform/id"
)

type resolverFixture struct {
	pickSvc  *PickService
	resolver *ResolverService
	seasons  *memory.SeasonRepository
	entries  *memory.EntryRepository
	matches  *memory.MatchRepository
	picks    *memory.PickRepository
}

func newResolverFixture(t *testing.T, now time.Time) *resolverFixture {
	t.Helper()

	seasons := memory.NewSeasonRepository(memory.SeedSeasons())
	entries := memory.NewEntryRepository([]entry.Entry{
		{ID: "entry-1", UserID: "user-1", SeasonID: memory.SeasonID2025, Name: "Main", Status: entry.StatusAlive, IsActive: true},
		{ID: "entry-2", UserID: "user-2", SeasonID: memory.SeasonID2025, Name: "Second", Status: entry.StatusAlive, IsActive: true},
	})
	matches := memory.NewMatchRepository(memory.SeedMatches(testAnchor))
	picks := memory.NewPickRepository()

	pickSvc := NewPickService(seasons, entries, matches, picks, idgen.NewRandomGenerator(), nil)
	pickSvc.now = func() time.Time { return now }

	resolver := NewResolverService(seasons, matches, picks, entries, nil)
	resolver.now = func() time.Time { return now }

	return &resolverFixture{
		pickSvc:  pickSvc,
		resolver: resolver,
		seasons:  seasons,
		entries:  entries,
		matches:  matches,
		picks:    picks,
	}
}

func completeMatch(t *testing.T, fx *resolverFixture, matchID string, home, away int) {
	t.Helper()

	m, exists, err := fx.matches.GetByID(t.Context(), matchID)
	if err != nil || !exists {
		t.Fatalf("match %s missing: exists=%t err=%v", matchID, exists, err)
	}
	m.Status = match.StatusCompleted
	m.HomeScore = &home
	m.AwayScore = &away
	if err := fx.matches.Upsert(t.Context(), m); err != nil {
		t.Fatalf("upsert match: %v", err)
	}
}

// Week 5 walkthrough: the user locks in the Chiefs two days out, swaps
// to the Raiders the morning of the game, and the Chiefs win 24-17. The
// Raiders pick loses, costing the fixed penalty and burning the entry's
// free life.
func TestResolverService_Week5ReplacementLoss(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("initial pick: %v", err)
	}

	morningOf := testAnchor.Add(12 * time.Hour)
	fx.pickSvc.now = func() time.Time { return morningOf }

	pending, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "lv",
	})
	if err != nil {
		t.Fatalf("unconfirmed swap: %v", err)
	}
	if pending.Status != SubmitStatusNeedsConfirmation {
		t.Fatalf("expected needs_confirmation, got %s", pending.Status)
	}

	confirmed, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "lv",
		ConfirmReplace: true,
	})
	if err != nil {
		t.Fatalf("confirmed swap: %v", err)
	}
	if confirmed.Pick.TeamID != "lv" {
		t.Fatalf("swap not applied: %s", confirmed.Pick.TeamID)
	}

	completeMatch(t, fx, "nfl-2025-w5-kc-lv", 24, 17)
	fx.resolver.now = func() time.Time { return testAnchor.Add(21 * time.Hour) }

	res, err := fx.resolver.ResolveMatch(t.Context(), "nfl-2025-w5-kc-lv")
	if err != nil {
		t.Fatalf("resolve match: %v", err)
	}
	if res.Status != resolveStatusResolved || res.PicksResolved != 1 {
		t.Fatalf("unexpected resolution: %+v", res)
	}

	graded, _, err := fx.picks.GetForWeek(t.Context(), "entry-1", memory.SeasonID2025, 5)
	if err != nil {
		t.Fatalf("get graded pick: %v", err)
	}
	if graded.Result != pick.ResultLoss {
		t.Fatalf("expected loss, got %s", graded.Result)
	}
	if graded.PointsEarned != survivor.LossPenalty {
		t.Fatalf("expected %d points, got %d", survivor.LossPenalty, graded.PointsEarned)
	}

	ent, _, err := fx.entries.GetByID(t.Context(), "entry-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if ent.Status != entry.StatusLastChance || !ent.IsActive {
		t.Fatalf("one loss must mean last chance: status=%s active=%t", ent.Status, ent.IsActive)
	}
	if ent.Points != survivor.LossPenalty {
		t.Fatalf("unexpected entry points: %d", ent.Points)
	}
}

func TestResolverService_WinPaysAnticipationHours(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("submit pick: %v", err)
	}

	completeMatch(t, fx, "nfl-2025-w5-kc-lv", 24, 17)
	if _, err := fx.resolver.ResolveMatch(t.Context(), "nfl-2025-w5-kc-lv"); err != nil {
		t.Fatalf("resolve match: %v", err)
	}

	graded, _, err := fx.picks.GetForWeek(t.Context(), "entry-1", memory.SeasonID2025, 5)
	if err != nil {
		t.Fatalf("get graded pick: %v", err)
	}
	if graded.Result != pick.ResultWin {
		t.Fatalf("expected win, got %s", graded.Result)
	}
	// Locked in 48h before the anchor, kickoff 17h after it.
	if graded.PointsEarned != 65 {
		t.Fatalf("expected 65 anticipation points, got %d", graded.PointsEarned)
	}
}

func TestResolverService_ResolveMatchIsIdempotent(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("submit pick: %v", err)
	}
	completeMatch(t, fx, "nfl-2025-w5-kc-lv", 24, 17)

	if _, err := fx.resolver.ResolveMatch(t.Context(), "nfl-2025-w5-kc-lv"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := fx.resolver.ResolveMatch(t.Context(), "nfl-2025-w5-kc-lv")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.PicksResolved != 0 {
		t.Fatalf("second resolve must not regrade picks: %+v", second)
	}

	ent, _, err := fx.entries.GetByID(t.Context(), "entry-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if ent.TotalWins != 1 || ent.Points == 0 {
		t.Fatalf("aggregates must survive re-resolution: %+v", ent)
	}
}

func TestResolverService_SkipsNonCompletedMatch(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	res, err := fx.resolver.ResolveMatch(t.Context(), "nfl-2025-w5-kc-lv")
	if err != nil {
		t.Fatalf("resolve scheduled match: %v", err)
	}
	if res.Status != resolveStatusSkipped {
		t.Fatalf("scheduled match must be skipped: %+v", res)
	}
}

func TestResolverService_ResolveWeekFansOut(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("entry-1 pick: %v", err)
	}
	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-2", Week: 5, MatchID: "nfl-2025-w5-buf-mia", TeamID: "mia",
	}); err != nil {
		t.Fatalf("entry-2 pick: %v", err)
	}

	completeMatch(t, fx, "nfl-2025-w5-kc-lv", 24, 17)
	completeMatch(t, fx, "nfl-2025-w5-buf-mia", 31, 10)

	report, err := fx.resolver.ResolveWeek(t.Context(), memory.SeasonID2025, 5, 4)
	if err != nil {
		t.Fatalf("resolve week: %v", err)
	}
	if report.MatchCount != 3 {
		t.Fatalf("unexpected match count: %d", report.MatchCount)
	}
	if report.ResolvedCount != 2 || report.SkippedCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	loser, _, err := fx.entries.GetByID(t.Context(), "entry-2")
	if err != nil {
		t.Fatalf("get entry-2: %v", err)
	}
	if loser.Status != entry.StatusLastChance {
		t.Fatalf("dolphins pick must burn the free life: %s", loser.Status)
	}
}

func TestResolverService_SecondLossEliminates(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "lv",
	}); err != nil {
		t.Fatalf("week 5 pick: %v", err)
	}
	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 6, MatchID: "nfl-2025-w6-sf-sea", TeamID: "sea",
	}); err != nil {
		t.Fatalf("week 6 pick: %v", err)
	}

	completeMatch(t, fx, "nfl-2025-w5-kc-lv", 24, 17)
	completeMatch(t, fx, "nfl-2025-w6-sf-sea", 28, 3)

	if err := fx.resolver.EnsureSeasonResolved(t.Context(), memory.SeasonID2025); err != nil {
		t.Fatalf("ensure season resolved: %v", err)
	}

	ent, _, err := fx.entries.GetByID(t.Context(), "entry-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if ent.Status != entry.StatusEliminated || ent.IsActive {
		t.Fatalf("two losses must eliminate: status=%s active=%t", ent.Status, ent.IsActive)
	}
	if ent.EliminatedWeek == nil || *ent.EliminatedWeek != 6 {
		t.Fatalf("unexpected eliminated week: %v", ent.EliminatedWeek)
	}
}

func TestResolverService_EnsureThrottlesRepeatRuns(t *testing.T) {
	fx := newResolverFixture(t, testAnchor.Add(-48*time.Hour))

	if err := fx.resolver.EnsureSeasonResolved(t.Context(), memory.SeasonID2025); err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	// A match completes inside the throttle window; the second ensure
	// must skip without touching it.
	if _, err := fx.pickSvc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("submit pick: %v", err)
	}
	completeMatch(t, fx, "nfl-2025-w5-kc-lv", 24, 17)

	if err := fx.resolver.EnsureSeasonResolved(t.Context(), memory.SeasonID2025); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	stored, _, err := fx.picks.GetForWeek(t.Context(), "entry-1", memory.SeasonID2025, 5)
	if err != nil {
		t.Fatalf("get pick: %v", err)
	}
	if stored.Resolved() {
		t.Fatalf("throttled ensure must not resolve picks")
	}
}
