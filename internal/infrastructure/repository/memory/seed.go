package memory

import (
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/team"
)

const SeasonID2025 = "nfl-2025"

func SeedSeasons() []season.Season {
	return []season.Season{
		{
			ID:          SeasonID2025,
			Year:        2025,
			IsActive:    true,
			CurrentWeek: 5,
			MaxWeeks:    season.DefaultMaxWeeks,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "kc", Name: "Chiefs", City: "Kansas City", Abbreviation: "KC", Conference: "AFC", Division: "West"},
		{ID: "lv", Name: "Raiders", City: "Las Vegas", Abbreviation: "LV", Conference: "AFC", Division: "West"},
		{ID: "buf", Name: "Bills", City: "Buffalo", Abbreviation: "BUF", Conference: "AFC", Division: "East"},
		{ID: "mia", Name: "Dolphins", City: "Miami", Abbreviation: "MIA", Conference: "AFC", Division: "East"},
		{ID: "bal", Name: "Ravens", City: "Baltimore", Abbreviation: "BAL", Conference: "AFC", Division: "North"},
		{ID: "cin", Name: "Bengals", City: "Cincinnati", Abbreviation: "CIN", Conference: "AFC", Division: "North"},
		{ID: "dal", Name: "Cowboys", City: "Dallas", Abbreviation: "DAL", Conference: "NFC", Division: "East"},
		{ID: "nyg", Name: "Giants", City: "New York", Abbreviation: "NYG", Conference: "NFC", Division: "East"},
		{ID: "phi", Name: "Eagles", City: "Philadelphia", Abbreviation: "PHI", Conference: "NFC", Division: "East"},
		{ID: "sf", Name: "49ers", City: "San Francisco", Abbreviation: "SF", Conference: "NFC", Division: "West"},
		{ID: "sea", Name: "Seahawks", City: "Seattle", Abbreviation: "SEA", Conference: "NFC", Division: "West"},
		{ID: "gb", Name: "Packers", City: "Green Bay", Abbreviation: "GB", Conference: "NFC", Division: "North"},
	}
}

// SeedMatches lays out two weeks around a fixed anchor so eligibility
// windows can be exercised deterministically in tests.
func SeedMatches(anchor time.Time) []match.Match {
	sunday := anchor.UTC().Truncate(24 * time.Hour)
	return []match.Match{
		{
			ID: "nfl-2025-w5-kc-lv", SeasonID: SeasonID2025, Week: 5,
			HomeTeamID: "kc", AwayTeamID: "lv",
			KickoffAt: sunday.Add(17 * time.Hour), Status: match.StatusScheduled,
		},
		{
			ID: "nfl-2025-w5-buf-mia", SeasonID: SeasonID2025, Week: 5,
			HomeTeamID: "buf", AwayTeamID: "mia",
			KickoffAt: sunday.Add(17 * time.Hour), Status: match.StatusScheduled,
		},
		{
			ID: "nfl-2025-w5-dal-nyg", SeasonID: SeasonID2025, Week: 5,
			HomeTeamID: "dal", AwayTeamID: "nyg",
			KickoffAt: sunday.Add(20*time.Hour + 25*time.Minute), Status: match.StatusScheduled,
		},
		{
			ID: "nfl-2025-w6-kc-buf", SeasonID: SeasonID2025, Week: 6,
			HomeTeamID: "kc", AwayTeamID: "buf",
			KickoffAt: sunday.Add(7*24*time.Hour + 17*time.Hour), Status: match.StatusScheduled,
		},
		{
			ID: "nfl-2025-w6-sf-sea", SeasonID: SeasonID2025, Week: 6,
			HomeTeamID: "sf", AwayTeamID: "sea",
			KickoffAt: sunday.Add(7*24*time.Hour + 20*time.Hour), Status: match.StatusScheduled,
		},
	}
}
