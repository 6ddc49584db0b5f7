package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
)

type EntryRepository struct {
	mu    sync.RWMutex
	items map[string]entry.Entry
}

func NewEntryRepository(entries []entry.Entry) *EntryRepository {
	items := make(map[string]entry.Entry, len(entries))
	for _, item := range entries {
		items[item.ID] = item
	}

	return &EntryRepository{items: items}
}

func (r *EntryRepository) GetByID(_ context.Context, entryID string) (entry.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[entryID]
	if !ok {
		return entry.Entry{}, false, nil
	}
	return cloneEntry(item), true, nil
}

func (r *EntryRepository) ListBySeason(_ context.Context, seasonID string) ([]entry.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entry.Entry, 0)
	for _, item := range r.items {
		if item.SeasonID == seasonID {
			out = append(out, cloneEntry(item))
		}
	}
	sortEntries(out)
	return out, nil
}

func (r *EntryRepository) ListByUser(_ context.Context, userID, seasonID string) ([]entry.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entry.Entry, 0)
	for _, item := range r.items {
		if item.UserID == userID && item.SeasonID == seasonID {
			out = append(out, cloneEntry(item))
		}
	}
	sortEntries(out)
	return out, nil
}

func (r *EntryRepository) Create(_ context.Context, item entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("entry %s already exists", item.ID)
	}
	r.items[item.ID] = cloneEntry(item)
	return nil
}

func (r *EntryRepository) UpdateAggregates(_ context.Context, entryID string, agg entry.Aggregates) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[entryID]
	if !ok {
		return fmt.Errorf("entry %s not found", entryID)
	}

	item.Points = agg.Points
	item.TotalWins = agg.TotalWins
	item.TotalLosses = agg.TotalLosses
	item.TotalTies = agg.TotalTies
	item.CurrentStreak = agg.CurrentStreak
	item.LongestStreak = agg.LongestStreak
	item.Status = agg.Status
	item.IsActive = agg.IsActive
	item.EliminatedWeek = agg.EliminatedWeek

	r.items[entryID] = cloneEntry(item)
	return nil
}

func sortEntries(items []entry.Entry) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
}

func cloneEntry(item entry.Entry) entry.Entry {
	out := item
	if item.EliminatedWeek != nil {
		v := *item.EliminatedWeek
		out.EliminatedWeek = &v
	}
	return out
}
