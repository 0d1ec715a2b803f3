package cache

import (
	"context"
	"testing"
	"time"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/matchwatch/matchwatch/internal/infrastructure/repository/memory"
	basecache "github.com/matchwatch/matchwatch/internal/platform/cache"
)

type countingRepository struct {
	matchbatch.Repository
	queries int
}

func (r *countingRepository) Query(ctx context.Context, league string, filter matchbatch.Filter) ([]matchbatch.MatchBatch, error) {
	r.queries++
	return r.Repository.Query(ctx, league, filter)
}

func seed(t *testing.T, repo matchbatch.Repository, league, season string) {
	t.Helper()
	batch := matchbatch.MatchBatch{
		League: league, Season: season, Tournament: "1", Week: "1",
		Matches: []matchbatch.MatchRecord{{HomeTeam: "A", AwayTeam: "B", HomeScore: 1, AwayScore: 0}},
	}
	batch.Normalize()
	if _, err := repo.Upsert(context.Background(), batch); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestBatchRepository_QueryCachesUntilUpsert(t *testing.T) {
	backing := &countingRepository{Repository: memory.NewBatchRepository()}
	repo := NewBatchRepository(backing, basecache.NewStore(time.Minute))

	seed(t, backing.Repository, "english", "2024")

	for i := 0; i < 3; i++ {
		got, err := repo.Query(context.Background(), "english", matchbatch.Filter{})
		if err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
		if len(got) != 1 {
			t.Fatalf("query %d: want 1 batch, got %d", i, len(got))
		}
	}
	if backing.queries != 1 {
		t.Fatalf("repeated reads must hit the cache, backing saw %d queries", backing.queries)
	}

	batch := matchbatch.MatchBatch{
		League: "english", Season: "2025", Tournament: "1", Week: "1",
		Matches: []matchbatch.MatchRecord{{HomeTeam: "C", AwayTeam: "D", HomeScore: 2, AwayScore: 2}},
	}
	batch.Normalize()
	if _, err := repo.Upsert(context.Background(), batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Query(context.Background(), "english", matchbatch.Filter{})
	if err != nil {
		t.Fatalf("query after upsert: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("upsert must invalidate the league cache, got %d batches", len(got))
	}
	if backing.queries != 2 {
		t.Fatalf("post-invalidation read must reach the backing store, saw %d queries", backing.queries)
	}
}

func TestBatchRepository_UpsertKeepsOtherLeaguesCached(t *testing.T) {
	backing := &countingRepository{Repository: memory.NewBatchRepository()}
	repo := NewBatchRepository(backing, basecache.NewStore(time.Minute))

	seed(t, backing.Repository, "english", "2024")
	seed(t, backing.Repository, "spanish", "2024")

	if _, err := repo.Query(context.Background(), "spanish", matchbatch.Filter{}); err != nil {
		t.Fatalf("warm spanish cache: %v", err)
	}

	batch := matchbatch.MatchBatch{
		League: "english", Season: "2025", Tournament: "1", Week: "1",
		Matches: []matchbatch.MatchRecord{{HomeTeam: "A", AwayTeam: "B", HomeScore: 0, AwayScore: 0}},
	}
	batch.Normalize()
	if _, err := repo.Upsert(context.Background(), batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	queriesBefore := backing.queries
	if _, err := repo.Query(context.Background(), "spanish", matchbatch.Filter{}); err != nil {
		t.Fatalf("spanish query: %v", err)
	}
	if backing.queries != queriesBefore {
		t.Fatalf("writes to one league must not evict another league's cache")
	}
}
