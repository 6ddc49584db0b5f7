package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/memory"
)

type fakeScheduleProvider struct {
	teams    []ExternalTeam
	games    []ExternalGame
	teamsErr error
	gamesErr error
}

func (p *fakeScheduleProvider) FetchTeams(context.Context) ([]ExternalTeam, error) {
	return p.teams, p.teamsErr
}

func (p *fakeScheduleProvider) FetchSeasonGames(context.Context, int) ([]ExternalGame, error) {
	return p.games, p.gamesErr
}

func TestScheduleSyncService_DisabledIsDependencyUnavailable(t *testing.T) {
	svc := NewScheduleSyncService(
		&fakeScheduleProvider{},
		memory.NewSeasonRepository(memory.SeedSeasons()),
		memory.NewTeamRepository(nil),
		memory.NewMatchRepository(nil),
		ScheduleSyncConfig{Enabled: false},
		nil,
	)

	if _, err := svc.SyncSchedule(t.Context(), memory.SeasonID2025); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestScheduleSyncService_NilProviderIsDependencyUnavailable(t *testing.T) {
	svc := NewScheduleSyncService(
		nil,
		memory.NewSeasonRepository(memory.SeedSeasons()),
		memory.NewTeamRepository(nil),
		memory.NewMatchRepository(nil),
		ScheduleSyncConfig{Enabled: true},
		nil,
	)

	if _, err := svc.SyncSchedule(t.Context(), memory.SeasonID2025); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestScheduleSyncService_ImportsTeamsAndGames(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	homeScore, awayScore := 27, 20
	provider := &fakeScheduleProvider{
		teams: []ExternalTeam{
			{ExternalID: "ext-kc", Name: "Chiefs", City: "Kansas City", Abbreviation: "KC", Conference: "AFC", Division: "West"},
			{ExternalID: "ext-lv", Name: "Raiders", City: "Las Vegas", Abbreviation: "LV", Conference: "AFC", Division: "West"},
		},
		games: []ExternalGame{
			{
				ExternalID: "EV-100", Week: 1,
				HomeAbbr: "kc", AwayAbbr: "LV",
				KickoffAt: kickoff, Status: "final",
				HomeScore: &homeScore, AwayScore: &awayScore,
			},
			{
				ExternalID: "EV-101", Week: 1,
				HomeAbbr: "XXX", AwayAbbr: "LV",
				KickoffAt: kickoff, Status: "scheduled",
			},
			{
				ExternalID: "EV-102", Week: 0,
				HomeAbbr: "KC", AwayAbbr: "LV",
				KickoffAt: kickoff, Status: "scheduled",
			},
		},
	}

	teams := memory.NewTeamRepository(nil)
	matches := memory.NewMatchRepository(nil)
	svc := NewScheduleSyncService(
		provider,
		memory.NewSeasonRepository(memory.SeedSeasons()),
		teams,
		matches,
		ScheduleSyncConfig{Enabled: true},
		nil,
	)

	result, err := svc.SyncSchedule(t.Context(), memory.SeasonID2025)
	if err != nil {
		t.Fatalf("sync schedule: %v", err)
	}
	if result.TeamCount != 2 || result.MatchCount != 1 || result.SkippedGames != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	storedTeam, exists, err := teams.GetByID(t.Context(), "kc")
	if err != nil || !exists {
		t.Fatalf("team not upserted: exists=%t err=%v", exists, err)
	}
	if storedTeam.Abbreviation != "KC" {
		t.Fatalf("unexpected team abbreviation: %s", storedTeam.Abbreviation)
	}

	storedMatch, exists, err := matches.GetByID(t.Context(), "nfl-2025-ev-100")
	if err != nil || !exists {
		t.Fatalf("match not upserted: exists=%t err=%v", exists, err)
	}
	if storedMatch.HomeTeamID != "kc" || storedMatch.AwayTeamID != "lv" {
		t.Fatalf("unexpected match teams: %+v", storedMatch)
	}
	if !storedMatch.Completed() {
		t.Fatalf("final provider status must map to a completed match")
	}
	if storedMatch.HomeScore == nil || *storedMatch.HomeScore != 27 {
		t.Fatalf("unexpected home score: %+v", storedMatch.HomeScore)
	}
}

func TestScheduleSyncService_ProviderFailurePropagates(t *testing.T) {
	provider := &fakeScheduleProvider{
		teamsErr: errors.New("provider down"),
	}
	svc := NewScheduleSyncService(
		provider,
		memory.NewSeasonRepository(memory.SeedSeasons()),
		memory.NewTeamRepository(nil),
		memory.NewMatchRepository(nil),
		ScheduleSyncConfig{Enabled: true},
		nil,
	)

	if _, err := svc.SyncSchedule(t.Context(), memory.SeasonID2025); err == nil {
		t.Fatalf("expected provider error to propagate")
	}
}

func TestScheduleSyncService_UnknownSeasonIsNotFound(t *testing.T) {
	svc := NewScheduleSyncService(
		&fakeScheduleProvider{},
		memory.NewSeasonRepository(memory.SeedSeasons()),
		memory.NewTeamRepository(nil),
		memory.NewMatchRepository(nil),
		ScheduleSyncConfig{Enabled: true},
		nil,
	)

	if _, err := svc.SyncSchedule(t.Context(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
