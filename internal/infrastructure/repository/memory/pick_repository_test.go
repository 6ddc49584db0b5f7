package memory

import (
	"testing"

	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/stretchr/testify/require"
)

func basePick(entryID string, week, version int) pick.Pick {
	return pick.Pick{
		ID:       "pk-" + entryID,
		EntryID:  entryID,
		SeasonID: SeasonID2025,
		MatchID:  "nfl-2025-w5-kc-lv",
		Week:     week,
		TeamID:   "kc",
		Result:   pick.ResultPending,
		Version:  version,
	}
}

func TestPickRepository_CreateRejectsTakenSlot(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()

	require.NoError(t, repo.Create(t.Context(), basePick("e1", 5, 1)))

	err := repo.Create(t.Context(), basePick("e1", 5, 1))
	require.ErrorIs(t, err, pick.ErrSlotTaken)

	// Same entry, different week is a different slot.
	other := basePick("e1", 6, 1)
	other.ID = "pk-e1-w6"
	require.NoError(t, repo.Create(t.Context(), other))
}

func TestPickRepository_ReplaceBumpsVersion(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	require.NoError(t, repo.Create(t.Context(), basePick("e1", 5, 1)))

	replacement := basePick("e1", 5, 1)
	replacement.TeamID = "lv"

	updated, err := repo.Replace(t.Context(), replacement)
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)
	require.Equal(t, "lv", updated.TeamID)

	stored, exists, err := repo.GetForWeek(t.Context(), "e1", SeasonID2025, 5)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, 2, stored.Version)
}

func TestPickRepository_ReplaceStaleVersionFails(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	require.NoError(t, repo.Create(t.Context(), basePick("e1", 5, 1)))

	first := basePick("e1", 5, 1)
	_, err := repo.Replace(t.Context(), first)
	require.NoError(t, err)

	stale := basePick("e1", 5, 1)
	_, err = repo.Replace(t.Context(), stale)
	require.ErrorIs(t, err, pick.ErrVersionMismatch)
}

func TestPickRepository_ListBySeasonWeekSortsByEntry(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	for _, entryID := range []string{"e2", "e1", "e3"} {
		item := basePick(entryID, 5, 1)
		require.NoError(t, repo.Create(t.Context(), item))
	}

	out, err := repo.ListBySeasonWeek(t.Context(), SeasonID2025, 5)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "e1", out[0].EntryID)
	require.Equal(t, "e3", out[2].EntryID)
}

func TestPickRepository_SaveResultUpdatesOnlyOutcome(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	require.NoError(t, repo.Create(t.Context(), basePick("e1", 5, 1)))

	resolved := basePick("e1", 5, 1)
	resolved.Result = pick.ResultWin
	resolved.PointsEarned = 120
	resolved.TeamID = "lv"

	require.NoError(t, repo.SaveResult(t.Context(), resolved))

	stored, exists, err := repo.GetForWeek(t.Context(), "e1", SeasonID2025, 5)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, pick.ResultWin, stored.Result)
	require.Equal(t, 120, stored.PointsEarned)
	// The selection itself is untouched by result writes.
	require.Equal(t, "kc", stored.TeamID)
}
