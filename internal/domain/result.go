package domain

import "time"

// RoundAction identifies the batch action a round performed.
type RoundAction string

const (
	// ActionFirstPreferences is the round-zero tally of every ballot's
	// first eligible preference, including any pre-count exclusions.
	ActionFirstPreferences RoundAction = "first_preferences"

	// ActionElection marks a round in which one or more candidates
	// reached quota and were elected, with surplus transfers applied.
	ActionElection RoundAction = "election"

	// ActionExclusion marks a round in which the lowest-total Hopeful
	// candidate was excluded and their votes transferred at full value.
	ActionExclusion RoundAction = "exclusion"

	// ActionElectRemaining marks the terminal shortcut electing every
	// remaining Hopeful candidate when they exactly fill the remaining
	// vacancies.
	ActionElectRemaining RoundAction = "elect_remaining"
)

// Transfer records one candidate affected by a round and the transfer
// value applied to their ballots. Surplus transfers use (T-Q)/T;
// exclusion transfers and pre-count exclusions use 1.
type Transfer struct {
	// CandidateID identifies the elected or excluded candidate.
	CandidateID string `json:"candidate_id"`

	// Value is the transfer value applied to the candidate's ballots.
	Value float64 `json:"value"`
}

// RoundSnapshot is one entry of the append-only audit trail. It captures
// the action taken, the candidates affected, and every candidate's total
// after the round's transfers completed.
type RoundSnapshot struct {
	// Round is the zero-based round number. Round zero is always the
	// first-preference tally.
	Round int `json:"round"`

	// Action is the batch action this round performed.
	Action RoundAction `json:"action"`

	// Affected lists the candidates elected or excluded this round, in
	// decision order, with the transfer value used for each.
	Affected []Transfer `json:"affected,omitempty"`

	// Totals holds every candidate's post-round vote total keyed by
	// candidate ID.
	Totals map[string]float64 `json:"totals"`

	// ExhaustedWeight is the cumulative exhausted ballot weight after
	// this round.
	ExhaustedWeight float64 `json:"exhausted_weight"`
}

// Result is the terminal outcome of one count: the elected candidates in
// election order, the full audit trail, and the conservation figures.
type Result struct {
	// CountID uniquely identifies this count for audit correlation
	// (a UUID).
	CountID string `json:"count_id"`

	// Position names the position that was counted, when known.
	Position string `json:"position,omitempty"`

	// Elected lists the elected candidates in the order they were
	// elected, ties resolved deterministically.
	Elected []Candidate `json:"elected"`

	// Rounds is the append-only round history.
	Rounds []RoundSnapshot `json:"rounds"`

	// Quota is the Droop quota the count was run against.
	Quota float64 `json:"quota"`

	// TotalWeight is the total original valid ballot weight.
	TotalWeight float64 `json:"total_weight"`

	// ExhaustedWeight is the final cumulative exhausted ballot weight.
	ExhaustedWeight float64 `json:"exhausted_weight"`

	// Timestamp records when the count completed.
	Timestamp time.Time `json:"timestamp"`
}
