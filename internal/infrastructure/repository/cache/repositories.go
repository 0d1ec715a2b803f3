package cache

import (
	"context"
	"strings"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	basecache "github.com/matchwatch/matchwatch/internal/platform/cache"
)

// BatchRepository decorates a matchbatch.Repository with a read-through
// cache. Keys share a per-league prefix so one write invalidates every
// cached read in that league without touching the others.
type BatchRepository struct {
	next  matchbatch.Repository
	cache *basecache.Store
}

func NewBatchRepository(next matchbatch.Repository, cache *basecache.Store) *BatchRepository {
	return &BatchRepository{next: next, cache: cache}
}

func leaguePrefix(league string) string {
	return "batch:" + matchbatch.NormalizeLeague(league) + ":"
}

func (r *BatchRepository) Upsert(ctx context.Context, batch matchbatch.MatchBatch) (bool, error) {
	created, err := r.next.Upsert(ctx, batch)
	if err != nil {
		return false, err
	}
	r.cache.DeletePrefix(ctx, leaguePrefix(batch.League))
	return created, nil
}

func (r *BatchRepository) GetByID(ctx context.Context, league, id string) (matchbatch.MatchBatch, bool, error) {
	key := leaguePrefix(league) + "id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		batch, exists, err := r.next.GetByID(ctx, league, id)
		if err != nil {
			return nil, err
		}
		return cachedBatch{value: batch, exists: exists}, nil
	})
	if err != nil {
		return matchbatch.MatchBatch{}, false, err
	}

	cached, _ := v.(cachedBatch)
	return cached.value, cached.exists, nil
}

type cachedBatch struct {
	value  matchbatch.MatchBatch
	exists bool
}

func (r *BatchRepository) Query(ctx context.Context, league string, filter matchbatch.Filter) ([]matchbatch.MatchBatch, error) {
	key := leaguePrefix(league) + "query:" + strings.Join([]string{filter.Season, filter.Tournament, filter.Week}, "|")
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.Query(ctx, league, filter)
		if err != nil {
			return nil, err
		}
		return append([]matchbatch.MatchBatch(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]matchbatch.MatchBatch)
	return append([]matchbatch.MatchBatch(nil), items...), nil
}

func (r *BatchRepository) ListForScan(ctx context.Context, league string) ([]matchbatch.MatchBatch, error) {
	key := leaguePrefix(league) + "scan"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListForScan(ctx, league)
		if err != nil {
			return nil, err
		}
		return append([]matchbatch.MatchBatch(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]matchbatch.MatchBatch)
	return append([]matchbatch.MatchBatch(nil), items...), nil
}

func (r *BatchRepository) FindMatchupHistory(ctx context.Context, league, homeTeam, awayTeam string) ([]matchbatch.MatchupRecord, error) {
	key := leaguePrefix(league) + "matchup:" + matchbatch.NormalizeTeam(homeTeam) + "|" + matchbatch.NormalizeTeam(awayTeam)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.FindMatchupHistory(ctx, league, homeTeam, awayTeam)
		if err != nil {
			return nil, err
		}
		return append([]matchbatch.MatchupRecord(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]matchbatch.MatchupRecord)
	return append([]matchbatch.MatchupRecord(nil), items...), nil
}
