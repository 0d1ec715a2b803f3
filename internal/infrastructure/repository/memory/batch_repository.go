package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
)

const (
	defaultQueryLimit   = 20
	defaultMatchupLimit = 50
	defaultScanLimit    = 200
)

// BatchRepository is the in-memory document store. Batches live in
// per-league partitions keyed by derived batch ID, mirroring the layout of
// the durable store so either can back the services.
type BatchRepository struct {
	mu         sync.RWMutex
	partitions map[string]map[string]matchbatch.MatchBatch
}

func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		partitions: make(map[string]map[string]matchbatch.MatchBatch),
	}
}

func (r *BatchRepository) Upsert(_ context.Context, batch matchbatch.MatchBatch) (bool, error) {
	partition := matchbatch.CollectionKey(batch.League)

	r.mu.Lock()
	defer r.mu.Unlock()

	docs, ok := r.partitions[partition]
	if !ok {
		docs = make(map[string]matchbatch.MatchBatch)
		r.partitions[partition] = docs
	}

	_, existed := docs[batch.ID]
	docs[batch.ID] = cloneBatch(batch)
	return !existed, nil
}

func (r *BatchRepository) GetByID(_ context.Context, league, id string) (matchbatch.MatchBatch, bool, error) {
	partition := matchbatch.CollectionKey(league)

	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.partitions[partition][id]
	if !ok {
		return matchbatch.MatchBatch{}, false, nil
	}
	return cloneBatch(batch), true, nil
}

func (r *BatchRepository) Query(_ context.Context, league string, filter matchbatch.Filter) ([]matchbatch.MatchBatch, error) {
	partition := matchbatch.CollectionKey(league)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matchbatch.MatchBatch, 0)
	for _, batch := range r.partitions[partition] {
		if filter.Season != "" && batch.Season != filter.Season {
			continue
		}
		if filter.Tournament != "" && batch.Tournament != filter.Tournament {
			continue
		}
		if filter.Week != "" && batch.Week != filter.Week {
			continue
		}
		out = append(out, cloneBatch(batch))
	}
	sortBatchesDesc(out)

	if !filter.FullyQualified() && len(out) > defaultQueryLimit {
		out = out[:defaultQueryLimit]
	}
	return out, nil
}

func (r *BatchRepository) ListForScan(_ context.Context, league string) ([]matchbatch.MatchBatch, error) {
	partition := matchbatch.CollectionKey(league)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matchbatch.MatchBatch, 0, len(r.partitions[partition]))
	for _, batch := range r.partitions[partition] {
		out = append(out, cloneBatch(batch))
	}
	sortBatchesDesc(out)

	if len(out) > defaultScanLimit {
		out = out[:defaultScanLimit]
	}
	return out, nil
}

func (r *BatchRepository) FindMatchupHistory(_ context.Context, league, homeTeam, awayTeam string) ([]matchbatch.MatchupRecord, error) {
	partition := matchbatch.CollectionKey(league)

	r.mu.RLock()
	defer r.mu.RUnlock()

	batches := make([]matchbatch.MatchBatch, 0, len(r.partitions[partition]))
	for _, batch := range r.partitions[partition] {
		batches = append(batches, batch)
	}
	sortBatchesDesc(batches)

	out := make([]matchbatch.MatchupRecord, 0)
	for _, batch := range batches {
		for _, match := range batch.Matches {
			if !match.SameTeams(homeTeam, awayTeam) {
				continue
			}
			out = append(out, matchbatch.MatchupRecord{
				HomeTeam:   match.HomeTeam,
				AwayTeam:   match.AwayTeam,
				HomeScore:  match.HomeScore,
				AwayScore:  match.AwayScore,
				Season:     batch.Season,
				Tournament: batch.Tournament,
				Week:       batch.Week,
			})
			if len(out) == defaultMatchupLimit {
				return out, nil
			}
		}
	}
	return out, nil
}

// sortBatchesDesc orders most recent coordinates first. Keys are compared
// as strings, matching the ordering of the durable store.
func sortBatchesDesc(batches []matchbatch.MatchBatch) {
	sort.Slice(batches, func(i, j int) bool {
		if batches[i].Season != batches[j].Season {
			return batches[i].Season > batches[j].Season
		}
		if batches[i].Tournament != batches[j].Tournament {
			return batches[i].Tournament > batches[j].Tournament
		}
		return batches[i].Week > batches[j].Week
	})
}

func cloneBatch(batch matchbatch.MatchBatch) matchbatch.MatchBatch {
	out := batch
	out.Matches = append([]matchbatch.MatchRecord(nil), batch.Matches...)
	return out
}
