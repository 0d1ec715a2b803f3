package pattern

// Kind names the strongest equivalence relation under which two batches
// match. Listed strongest first.
type Kind string

const (
	KindExactSequence      Kind = "EXACT_SEQUENCE_MATCH"
	KindRearrangedSequence Kind = "REARRANGED_SEQUENCE"
	KindTeamPattern        Kind = "TEAM_PATTERN_MATCH"
	KindIdenticalFixtures  Kind = "IDENTICAL_FIXTURE_LIST"
	KindScorePattern       Kind = "SCORE_PATTERN_MATCH"
)

// Alert flags one candidate batch as suspiciously similar to the current
// batch, carrying the strongest matching relation only.
type Alert struct {
	Kind       Kind
	BatchID    string
	Season     string
	Tournament string
	Week       string
}

// Classify evaluates the fixed precedence chain between the current batch's
// fingerprints and one candidate's, stopping at the first satisfied rule.
// First match wins: a weak coincidence is never reported when a stronger
// relation already explains the similarity. Empty fingerprint sets never
// classify.
func Classify(current, candidate Fingerprints) (Kind, bool) {
	if current.Empty() || candidate.Empty() {
		return "", false
	}

	switch {
	case current.Exact == candidate.Exact:
		return KindExactSequence, true
	case current.Scrambled == candidate.Scrambled:
		return KindRearrangedSequence, true
	case current.PairingScrambled == candidate.PairingScrambled:
		return KindTeamPattern, true
	case current.PairingSeq == candidate.PairingSeq:
		return KindIdenticalFixtures, true
	case current.Outcome == candidate.Outcome:
		return KindScorePattern, true
	default:
		return "", false
	}
}
