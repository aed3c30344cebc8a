package enums

// MatchOutcome is the terminal state of a roll submission.
type MatchOutcome string

const (
	MatchOutcomeMatched MatchOutcome = "matched"
	MatchOutcomeNoMatch MatchOutcome = "no_match"
)
