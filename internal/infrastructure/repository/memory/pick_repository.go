package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	slots map[string]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{slots: make(map[string]pick.Pick)}
}

func slotKey(entryID, seasonID string, week int) string {
	return fmt.Sprintf("%s::%s::%d", entryID, seasonID, week)
}

func (r *PickRepository) GetForWeek(_ context.Context, entryID, seasonID string, week int) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.slots[slotKey(entryID, seasonID, week)]
	if !ok {
		return pick.Pick{}, false, nil
	}
	return item, true, nil
}

func (r *PickRepository) ListByEntry(_ context.Context, entryID, seasonID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.slots {
		if item.EntryID == entryID && item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListByMatch(_ context.Context, matchID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.slots {
		if item.MatchID == matchID {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListBySeasonWeek(_ context.Context, seasonID string, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.slots {
		if item.SeasonID == seasonID && item.Week == week {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) Create(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(item.EntryID, item.SeasonID, item.Week)
	if _, exists := r.slots[key]; exists {
		return pick.ErrSlotTaken
	}
	r.slots[key] = item
	return nil
}

func (r *PickRepository) Replace(_ context.Context, item pick.Pick) (pick.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(item.EntryID, item.SeasonID, item.Week)
	stored, exists := r.slots[key]
	if !exists {
		return pick.Pick{}, fmt.Errorf("pick slot %s not found", key)
	}
	if stored.Version != item.Version {
		return pick.Pick{}, pick.ErrVersionMismatch
	}

	item.Version = stored.Version + 1
	r.slots[key] = item
	return item, nil
}

func (r *PickRepository) SaveResult(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(item.EntryID, item.SeasonID, item.Week)
	stored, exists := r.slots[key]
	if !exists {
		return fmt.Errorf("pick slot %s not found", key)
	}

	stored.Result = item.Result
	stored.PointsEarned = item.PointsEarned
	stored.UpdatedAt = item.UpdatedAt
	r.slots[key] = stored
	return nil
}

func sortPicks(items []pick.Pick) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Week != items[j].Week {
			return items[i].Week < items[j].Week
		}
		return items[i].EntryID < items[j].EntryID
	})
}
