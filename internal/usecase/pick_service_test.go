package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/survivor"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/memory"
	idgen "github.com/nflsurvivor/survivor-pool/internal/platform/id"
)

var testAnchor = time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)

type pickServiceFixture struct {
	svc     *PickService
	seasons *memory.SeasonRepository
	entries *memory.EntryRepository
	matches *memory.MatchRepository
	picks   *memory.PickRepository
}

func newPickServiceFixture(t *testing.T, now time.Time) *pickServiceFixture {
	t.Helper()

	seasons := memory.NewSeasonRepository(memory.SeedSeasons())
	entries := memory.NewEntryRepository([]entry.Entry{
		{ID: "entry-1", UserID: "user-1", SeasonID: memory.SeasonID2025, Name: "Main", Status: entry.StatusAlive, IsActive: true},
	})
	matches := memory.NewMatchRepository(memory.SeedMatches(testAnchor))
	picks := memory.NewPickRepository()

	svc := NewPickService(seasons, entries, matches, picks, idgen.NewRandomGenerator(), nil)
	svc.now = func() time.Time { return now }

	return &pickServiceFixture{
		svc:     svc,
		seasons: seasons,
		entries: entries,
		matches: matches,
		picks:   picks,
	}
}

func TestPickService_SubmitPick_FreshPickCommits(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	got, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1",
		Week:    5,
		MatchID: "nfl-2025-w5-kc-lv",
		TeamID:  "kc",
	})
	if err != nil {
		t.Fatalf("submit pick: %v", err)
	}
	if got.Status != SubmitStatusCommitted {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.Pick.Version != 1 {
		t.Fatalf("fresh pick must start at version 1, got %d", got.Pick.Version)
	}

	stored, exists, err := fx.picks.GetForWeek(t.Context(), "entry-1", memory.SeasonID2025, 5)
	if err != nil || !exists {
		t.Fatalf("stored pick missing: exists=%t err=%v", exists, err)
	}
	if stored.TeamID != "kc" {
		t.Fatalf("unexpected stored team: %s", stored.TeamID)
	}
}

func TestPickService_SubmitPick_IdempotentResubmitKeepsCreatedAt(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	first, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	fx.svc.now = func() time.Time { return testAnchor.Add(-2 * time.Hour) }
	second, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.Status != SubmitStatusCommitted {
		t.Fatalf("unexpected status: %s", second.Status)
	}
	if !second.Pick.CreatedAt.Equal(first.Pick.CreatedAt) {
		t.Fatalf("resubmit must keep created_at: first=%v second=%v", first.Pick.CreatedAt, second.Pick.CreatedAt)
	}
}

func TestPickService_SubmitPick_ReplacementRequiresConfirmation(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	got, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "lv",
	})
	if err != nil {
		t.Fatalf("unconfirmed replacement: %v", err)
	}
	if got.Status != SubmitStatusNeedsConfirmation {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.Current == nil || got.Current.TeamID != "kc" {
		t.Fatalf("current pick missing from confirmation payload")
	}
	if got.Candidate == nil || got.Candidate.TeamID != "lv" {
		t.Fatalf("candidate pick missing from confirmation payload")
	}

	stored, _, err := fx.picks.GetForWeek(t.Context(), "entry-1", memory.SeasonID2025, 5)
	if err != nil {
		t.Fatalf("get stored pick: %v", err)
	}
	if stored.TeamID != "kc" {
		t.Fatalf("needs-confirmation must not write: stored team=%s", stored.TeamID)
	}
}

func TestPickService_SubmitPick_ConfirmedReplacementCommits(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	fx.svc.now = func() time.Time { return testAnchor.Add(-5 * time.Hour) }
	got, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-buf-mia", TeamID: "buf",
		ConfirmReplace: true,
	})
	if err != nil {
		t.Fatalf("confirmed replacement: %v", err)
	}
	if got.Status != SubmitStatusCommitted {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.Pick.TeamID != "buf" || got.Pick.MatchID != "nfl-2025-w5-buf-mia" {
		t.Fatalf("replacement not applied: team=%s match=%s", got.Pick.TeamID, got.Pick.MatchID)
	}
	if got.Pick.Version != 2 {
		t.Fatalf("replacement must bump version, got %d", got.Pick.Version)
	}
	if !got.Pick.CreatedAt.Equal(testAnchor.Add(-5 * time.Hour)) {
		t.Fatalf("replacement must reset created_at, got %v", got.Pick.CreatedAt)
	}
}

func TestPickService_SubmitPick_RejectsTeamUsedInEarlierWeek(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("week 5 pick: %v", err)
	}

	_, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 6, MatchID: "nfl-2025-w6-kc-buf", TeamID: "kc",
	})
	if !errors.Is(err, survivor.ErrTeamAlreadyUsed) {
		t.Fatalf("expected ErrTeamAlreadyUsed, got %v", err)
	}
}

func TestPickService_SubmitPick_RejectsStartedMatch(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(17*time.Hour))

	_, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	})
	if !errors.Is(err, survivor.ErrMatchAlreadyStarted) {
		t.Fatalf("expected ErrMatchAlreadyStarted at kickoff, got %v", err)
	}
}

func TestPickService_SubmitPick_RejectsReplacingStartedPick(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	// Early game kicked off, late game has not.
	fx.svc.now = func() time.Time { return testAnchor.Add(18 * time.Hour) }
	_, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-dal-nyg", TeamID: "dal",
		ConfirmReplace: true,
	})
	if !errors.Is(err, survivor.ErrCannotChangeStartedPick) {
		t.Fatalf("expected ErrCannotChangeStartedPick, got %v", err)
	}
}

func TestPickService_SubmitPick_UnknownEntryAndMatch(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	_, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "ghost", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown entry, got %v", err)
	}

	_, err = fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "ghost", TeamID: "kc",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown match, got %v", err)
	}
}

func TestPickService_UsedTeams_IncludesCurrentWeek(t *testing.T) {
	fx := newPickServiceFixture(t, testAnchor.Add(-48*time.Hour))

	if _, err := fx.svc.SubmitPick(t.Context(), SubmitPickInput{
		EntryID: "entry-1", Week: 5, MatchID: "nfl-2025-w5-kc-lv", TeamID: "kc",
	}); err != nil {
		t.Fatalf("submit pick: %v", err)
	}

	used, err := fx.svc.UsedTeams(t.Context(), "entry-1", memory.SeasonID2025)
	if err != nil {
		t.Fatalf("used teams: %v", err)
	}
	if len(used) != 1 || used[0] != "kc" {
		t.Fatalf("ledger must include the current week's team: %v", used)
	}
}
