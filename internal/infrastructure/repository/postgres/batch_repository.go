package postgres

import (
	"context"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	qb "github.com/matchwatch/matchwatch/internal/platform/querybuilder"
	"github.com/matchwatch/matchwatch/internal/platform/resilience"
)

const matchBatchTable = "match_batches"

// Limits bounds the unconstrained read paths. Zero values fall back to the
// package defaults.
type Limits struct {
	Query   int
	Matchup int
	Scan    int
}

const (
	defaultQueryLimit   = 20
	defaultMatchupLimit = 50
	defaultScanLimit    = 200
)

func (l Limits) withDefaults() Limits {
	if l.Query <= 0 {
		l.Query = defaultQueryLimit
	}
	if l.Matchup <= 0 {
		l.Matchup = defaultMatchupLimit
	}
	if l.Scan <= 0 {
		l.Scan = defaultScanLimit
	}
	return l
}

// BatchRepository stores match batches in Postgres, one row per derived
// batch ID with the match list as a JSONB document. A circuit breaker sits
// in front of every query so a struggling database fails fast instead of
// piling up connections.
type BatchRepository struct {
	db      *sqlx.DB
	breaker *resilience.CircuitBreaker
	limits  Limits
}

func NewBatchRepository(db *sqlx.DB, breaker *resilience.CircuitBreaker, limits Limits) *BatchRepository {
	return &BatchRepository{
		db:      db,
		breaker: breaker,
		limits:  limits.withDefaults(),
	}
}

func (r *BatchRepository) Upsert(ctx context.Context, batch matchbatch.MatchBatch) (bool, error) {
	if err := r.allow(); err != nil {
		return false, err
	}

	docs := make([]matchRecordDocument, 0, len(batch.Matches))
	for _, match := range batch.Matches {
		docs = append(docs, matchRecordDocument{
			HomeTeam:  match.HomeTeam,
			AwayTeam:  match.AwayTeam,
			HomeScore: match.HomeScore,
			AwayScore: match.AwayScore,
		})
	}
	matchesJSON, err := sonic.MarshalString(docs)
	if err != nil {
		return false, crerr.Wrap(err, "marshal match list")
	}

	model := matchBatchTableModel{
		ID:         batch.ID,
		Partition:  matchbatch.CollectionKey(batch.League),
		League:     batch.League,
		Season:     batch.Season,
		Tournament: batch.Tournament,
		Week:       batch.Week,
		Matches:    matchesJSON,
		UpdatedAt:  batch.UpdatedAt,
	}

	// xmax = 0 only holds for freshly inserted rows, which distinguishes
	// create from replace in a single round trip.
	query, args, err := qb.InsertModel(matchBatchTable, model, `ON CONFLICT (id)
DO UPDATE SET
    partition = EXCLUDED.partition,
    league = EXCLUDED.league,
    season = EXCLUDED.season,
    tournament = EXCLUDED.tournament,
    week = EXCLUDED.week,
    matches = EXCLUDED.matches,
    updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS created`)
	if err != nil {
		return false, crerr.Wrap(err, "build upsert match batch query")
	}

	var created bool
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return false, r.storageError(err, "upsert match batch "+batch.ID)
	}

	r.breaker.RecordSuccess()
	return created, nil
}

func (r *BatchRepository) GetByID(ctx context.Context, league, id string) (matchbatch.MatchBatch, bool, error) {
	if err := r.allow(); err != nil {
		return matchbatch.MatchBatch{}, false, err
	}

	query, args, err := qb.Select("*").From(matchBatchTable).
		Where(
			qb.Eq("partition", matchbatch.CollectionKey(league)),
			qb.Eq("id", id),
		).
		ToSQL()
	if err != nil {
		return matchbatch.MatchBatch{}, false, crerr.Wrap(err, "build select match batch query")
	}

	var row matchBatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			r.breaker.RecordSuccess()
			return matchbatch.MatchBatch{}, false, nil
		}
		return matchbatch.MatchBatch{}, false, r.storageError(err, "select match batch "+id)
	}

	batch, err := rowToBatch(row)
	if err != nil {
		return matchbatch.MatchBatch{}, false, err
	}

	r.breaker.RecordSuccess()
	return batch, true, nil
}

func (r *BatchRepository) Query(ctx context.Context, league string, filter matchbatch.Filter) ([]matchbatch.MatchBatch, error) {
	conditions := []qb.Condition{qb.Eq("partition", matchbatch.CollectionKey(league))}
	if filter.Season != "" {
		conditions = append(conditions, qb.Eq("season", filter.Season))
	}
	if filter.Tournament != "" {
		conditions = append(conditions, qb.Eq("tournament", filter.Tournament))
	}
	if filter.Week != "" {
		conditions = append(conditions, qb.Eq("week", filter.Week))
	}

	limit := r.limits.Query
	if filter.FullyQualified() {
		limit = 0
	}

	return r.selectBatches(ctx, conditions, limit, "select match batches")
}

func (r *BatchRepository) ListForScan(ctx context.Context, league string) ([]matchbatch.MatchBatch, error) {
	conditions := []qb.Condition{qb.Eq("partition", matchbatch.CollectionKey(league))}
	return r.selectBatches(ctx, conditions, r.limits.Scan, "select scan corpus")
}

func (r *BatchRepository) FindMatchupHistory(ctx context.Context, league, homeTeam, awayTeam string) ([]matchbatch.MatchupRecord, error) {
	// Pairing membership lives inside the JSONB document, so candidate rows
	// are fetched by partition and the pairing filter runs in Go.
	batches, err := r.selectBatches(ctx,
		[]qb.Condition{qb.Eq("partition", matchbatch.CollectionKey(league))},
		r.limits.Scan,
		"select matchup candidates",
	)
	if err != nil {
		return nil, err
	}

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
			if len(out) == r.limits.Matchup {
				return out, nil
			}
		}
	}
	return out, nil
}

func (r *BatchRepository) selectBatches(ctx context.Context, conditions []qb.Condition, limit int, op string) ([]matchbatch.MatchBatch, error) {
	if err := r.allow(); err != nil {
		return nil, err
	}

	builder := qb.Select("*").From(matchBatchTable).
		Where(conditions...).
		OrderBy("season DESC", "tournament DESC", "week DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build "+op+" query")
	}

	var rows []matchBatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, r.storageError(err, op)
	}

	out := make([]matchbatch.MatchBatch, 0, len(rows))
	for _, row := range rows {
		batch, err := rowToBatch(row)
		if err != nil {
			return nil, err
		}
		out = append(out, batch)
	}

	r.breaker.RecordSuccess()
	return out, nil
}

func (r *BatchRepository) allow() error {
	if err := r.breaker.Allow(); err != nil {
		return crerr.Mark(err, matchbatch.ErrUnavailable)
	}
	return nil
}

// storageError records the failure on the breaker and marks connectivity
// problems with the domain sentinel so upper layers can map them.
func (r *BatchRepository) storageError(err error, op string) error {
	r.breaker.RecordFailure()
	wrapped := crerr.Wrap(err, op)
	if isStorageUnavailable(err) {
		return crerr.Mark(wrapped, matchbatch.ErrUnavailable)
	}
	return wrapped
}

func rowToBatch(row matchBatchTableModel) (matchbatch.MatchBatch, error) {
	var docs []matchRecordDocument
	if row.Matches != "" {
		if err := sonic.UnmarshalString(row.Matches, &docs); err != nil {
			return matchbatch.MatchBatch{}, crerr.Wrap(err, "unmarshal match list for batch "+row.ID)
		}
	}

	matches := make([]matchbatch.MatchRecord, 0, len(docs))
	for _, doc := range docs {
		matches = append(matches, matchbatch.MatchRecord{
			HomeTeam:  doc.HomeTeam,
			AwayTeam:  doc.AwayTeam,
			HomeScore: doc.HomeScore,
			AwayScore: doc.AwayScore,
		})
	}

	return matchbatch.MatchBatch{
		ID:         row.ID,
		League:     row.League,
		Season:     row.Season,
		Tournament: row.Tournament,
		Week:       row.Week,
		Matches:    matches,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
