// Package cache decorates read-heavy repositories with the in-process
// cache store. Entries, picks and registration tokens are deliberately
// not wrapped: their reads sit on the write path of pick submission
// and registration, where a stale row turns into a wrong eligibility
// verdict.
package cache

import (
	"context"
	"strconv"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/team"
	basecache "github.com/nflsurvivor/survivor-pool/internal/platform/cache"
)

type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, seasonActiveKey, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, seasonByIDKey(seasonID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) Upsert(ctx context.Context, item season.Season) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, seasonActiveKey)
	r.cache.Delete(ctx, seasonByIDKey(item.ID))
	return nil
}

func (r *SeasonRepository) SetCurrentWeek(ctx context.Context, seasonID string, week int) error {
	if err := r.next.SetCurrentWeek(ctx, seasonID, week); err != nil {
		return err
	}
	r.cache.Delete(ctx, seasonActiveKey)
	r.cache.Delete(ctx, seasonByIDKey(seasonID))
	return nil
}

type cachedSeason struct {
	value  season.Season
	exists bool
}

const seasonActiveKey = "season:active"

func seasonByIDKey(seasonID string) string {
	return "season:id:" + seasonID
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:id:"+teamID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) UpsertTeams(ctx context.Context, items []team.Team) error {
	if err := r.next.UpsertTeams(ctx, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}

type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

// GetByID is not cached: pick submission reads the match to check the
// kickoff window, and result ingestion flips its status underneath us.
func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	return r.next.GetByID(ctx, matchID)
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID string) ([]match.Match, error) {
	key := "match:list:season:" + seasonID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

func (r *MatchRepository) ListBySeasonWeek(ctx context.Context, seasonID string, week int) ([]match.Match, error) {
	key := "match:list:season:" + seasonID + ":week:" + strconv.Itoa(week)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeasonWeek(ctx, seasonID, week)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "match:list:season:"+item.SeasonID)
	return nil
}

func (r *MatchRepository) UpsertMatches(ctx context.Context, items []match.Match) error {
	if err := r.next.UpsertMatches(ctx, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "match:list:")
	return nil
}
