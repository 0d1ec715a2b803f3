package pattern

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/valyala/bytebufferpool"
)

const tokenSeparator = "|"

// Fingerprints holds the canonical string summaries of one match list.
// Each field captures the list under a different equivalence relation;
// an empty match list yields the zero value, which never classifies
// against anything.
type Fingerprints struct {
	// Exact is order + teams + scores.
	Exact string
	// Scrambled is teams + scores with match order ignored.
	Scrambled string
	// Outcome is the score sequence only, order-sensitive.
	Outcome string
	// PairingSeq is the team pairings in order, sides preserved.
	PairingSeq string
	// PairingScrambled is the pairing set with sides and order ignored.
	PairingScrambled string
}

// Empty reports whether the fingerprints came from an empty match list.
func (f Fingerprints) Empty() bool {
	return f.Exact == ""
}

// Compute derives all five fingerprints for a match list. Team names are
// compared lowercased and trimmed, independent of the uppercase storage
// normalization. Pure and deterministic: identical input, including match
// order, always yields identical output.
func Compute(matches []matchbatch.MatchRecord) Fingerprints {
	if len(matches) == 0 {
		return Fingerprints{}
	}

	exactTokens := make([]string, 0, len(matches))
	outcomeTokens := make([]string, 0, len(matches))
	pairingTokens := make([]string, 0, len(matches))
	sidelessTokens := make([]string, 0, len(matches))

	for _, m := range matches {
		home := comparableTeam(m.HomeTeam)
		away := comparableTeam(m.AwayTeam)
		score := strconv.Itoa(m.HomeScore) + "-" + strconv.Itoa(m.AwayScore)

		exactTokens = append(exactTokens, home+":"+score+":"+away)
		outcomeTokens = append(outcomeTokens, score)
		pairingTokens = append(pairingTokens, home+" v "+away)

		first, second := home, away
		if second < first {
			first, second = second, first
		}
		sidelessTokens = append(sidelessTokens, first+" v "+second)
	}

	scrambledTokens := append([]string(nil), exactTokens...)
	sort.Strings(scrambledTokens)
	sort.Strings(sidelessTokens)

	return Fingerprints{
		Exact:            joinTokens(exactTokens),
		Scrambled:        joinTokens(scrambledTokens),
		Outcome:          joinTokens(outcomeTokens),
		PairingSeq:       joinTokens(pairingTokens),
		PairingScrambled: joinTokens(sidelessTokens),
	}
}

func comparableTeam(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func joinTokens(tokens []string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, token := range tokens {
		if i > 0 {
			_, _ = buf.WriteString(tokenSeparator)
		}
		_, _ = buf.WriteString(token)
	}

	return buf.String()
}
