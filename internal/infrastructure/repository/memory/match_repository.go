package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(matches))
	for _, item := range matches {
		items[item.ID] = item
	}

	return &MatchRepository{items: items}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) ListBySeason(_ context.Context, seasonID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if item.SeasonID == seasonID {
			out = append(out, cloneMatch(item))
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) ListBySeasonWeek(_ context.Context, seasonID string, week int) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if item.SeasonID == seasonID && item.Week == week {
			out = append(out, cloneMatch(item))
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneMatch(item)
	return nil
}

func (r *MatchRepository) UpsertMatches(_ context.Context, items []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		r.items[item.ID] = cloneMatch(item)
	}
	return nil
}

func sortMatches(items []match.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Week != items[j].Week {
			return items[i].Week < items[j].Week
		}
		if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
			return items[i].KickoffAt.Before(items[j].KickoffAt)
		}
		return items[i].ID < items[j].ID
	})
}

func cloneMatch(item match.Match) match.Match {
	out := item
	if item.HomeScore != nil {
		v := *item.HomeScore
		out.HomeScore = &v
	}
	if item.AwayScore != nil {
		v := *item.AwayScore
		out.AwayScore = &v
	}
	return out
}
