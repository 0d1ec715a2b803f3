package matchbatch

import (
	"strings"
	"time"
)

const (
	// UnknownTeam replaces blank team names at the ingestion boundary.
	UnknownTeam = "UNKNOWN"

	// FallbackPartition receives batches submitted without a league.
	FallbackPartition = "matches"

	partitionSuffix = "-matches"
	keyDelimiter    = "-"
)

// MatchRecord is one normalized match result inside a batch.
type MatchRecord struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// MatchBatch is the stored document: all match results submitted for one
// (league, season, tournament, week) key. The latest submission fully
// replaces the previous one.
type MatchBatch struct {
	ID         string
	League     string
	Season     string
	Tournament string
	Week       string
	Matches    []MatchRecord
	UpdatedAt  time.Time
}

// MatchupRecord is a single projected result from a matchup-history scan.
type MatchupRecord struct {
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	Season     string
	Tournament string
	Week       string
}

// NormalizeLeague lowercases and trims a league identifier.
func NormalizeLeague(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeTeam trims and uppercases a team name. Blank names map to
// UnknownTeam so stored records never carry an empty side.
func NormalizeTeam(value string) string {
	name := strings.ToUpper(strings.TrimSpace(value))
	if name == "" {
		return UnknownTeam
	}
	return name
}

// NormalizeScore clamps negative scores to zero.
func NormalizeScore(value int) int {
	if value < 0 {
		return 0
	}
	return value
}

// BatchID derives the primary key for a batch. The key is the sole
// de-duplication mechanism: one document exists per distinct tuple.
func BatchID(league, season, tournament, week string) string {
	return strings.Join([]string{
		NormalizeLeague(league),
		strings.TrimSpace(season),
		strings.TrimSpace(tournament),
		strings.TrimSpace(week),
	}, keyDelimiter)
}

// CollectionKey maps a league to its storage partition. Pure and total:
// a missing league falls back to the shared partition.
func CollectionKey(league string) string {
	name := NormalizeLeague(league)
	if name == "" {
		return FallbackPartition
	}
	return name + partitionSuffix
}

// Normalize canonicalizes a batch in place: league lowercased, key fields
// trimmed, team names uppercased with the UnknownTeam fallback, scores
// clamped, and the derived ID recomputed.
func (b *MatchBatch) Normalize() {
	b.League = NormalizeLeague(b.League)
	b.Season = strings.TrimSpace(b.Season)
	b.Tournament = strings.TrimSpace(b.Tournament)
	b.Week = strings.TrimSpace(b.Week)
	for i := range b.Matches {
		b.Matches[i].HomeTeam = NormalizeTeam(b.Matches[i].HomeTeam)
		b.Matches[i].AwayTeam = NormalizeTeam(b.Matches[i].AwayTeam)
		b.Matches[i].HomeScore = NormalizeScore(b.Matches[i].HomeScore)
		b.Matches[i].AwayScore = NormalizeScore(b.Matches[i].AwayScore)
	}
	b.ID = BatchID(b.League, b.Season, b.Tournament, b.Week)
}

// SameTeams reports whether the record involves the given pairing on the
// given sides, compared case-insensitively.
func (m MatchRecord) SameTeams(homeTeam, awayTeam string) bool {
	return strings.EqualFold(strings.TrimSpace(m.HomeTeam), strings.TrimSpace(homeTeam)) &&
		strings.EqualFold(strings.TrimSpace(m.AwayTeam), strings.TrimSpace(awayTeam))
}
