package gridiron

import (
	"strings"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

type teamsEnvelope struct {
	Data []teamItem `json:"data"`
}

type teamItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Abbreviation string `json:"abbreviation"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
}

type gamesEnvelope struct {
	Data []gameItem `json:"data"`
}

type gameItem struct {
	ID         string `json:"id"`
	Week       int    `json:"week"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	KickoffAt  string `json:"kickoff_at"`
	Status     string `json:"status"`
	HomePoints *int   `json:"home_points"`
	AwayPoints *int   `json:"away_points"`
}

func mapTeam(item teamItem) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID:   strings.TrimSpace(item.ID),
		Name:         strings.TrimSpace(item.Name),
		City:         strings.TrimSpace(item.City),
		Abbreviation: strings.ToUpper(strings.TrimSpace(item.Abbreviation)),
		Conference:   strings.ToUpper(strings.TrimSpace(item.Conference)),
		Division:     strings.TrimSpace(item.Division),
	}
}

func mapGame(item gameItem) (usecase.ExternalGame, bool) {
	kickoff := parseProviderTime(item.KickoffAt)
	if kickoff == nil {
		return usecase.ExternalGame{}, false
	}

	return usecase.ExternalGame{
		ExternalID: strings.TrimSpace(item.ID),
		Week:       item.Week,
		HomeAbbr:   strings.ToUpper(strings.TrimSpace(item.HomeTeam)),
		AwayAbbr:   strings.ToUpper(strings.TrimSpace(item.AwayTeam)),
		KickoffAt:  *kickoff,
		Status:     strings.TrimSpace(item.Status),
		HomeScore:  item.HomePoints,
		AwayScore:  item.AwayPoints,
	}, true
}

func parseProviderTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}
