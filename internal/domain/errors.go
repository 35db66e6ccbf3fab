package domain

import (
	"errors"
	"fmt"
)

// Common domain errors surfaced before or during a count.
var (
	// ErrInvalidVacancies indicates a vacancy count that is zero or negative.
	ErrInvalidVacancies = errors.New("vacancy count must be positive")

	// ErrTooFewCandidates indicates a vacancy count that is not smaller
	// than the candidate count. The algorithm is undefined for this
	// trivial election; callers must elect everyone directly instead.
	ErrTooFewCandidates = errors.New("vacancy count must be less than candidate count")

	// ErrNoBallots indicates zero total valid ballot weight, for which
	// the quota is undefined.
	ErrNoBallots = errors.New("no valid ballots")

	// ErrDuplicateCandidate indicates two registered candidates sharing an ID.
	ErrDuplicateCandidate = errors.New("duplicate candidate identifier")

	// ErrEmptyCandidateID indicates a registered candidate with a blank ID.
	ErrEmptyCandidateID = errors.New("empty candidate identifier")

	// ErrStatusDecided indicates an attempt to elect or exclude a
	// candidate who has already left the Hopeful pool.
	ErrStatusDecided = errors.New("candidate status already decided")

	// ErrUnknownCandidate indicates a ballot preference referencing an
	// unregistered identifier.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrDuplicatePreference indicates a ballot ranking the same
	// candidate more than once.
	ErrDuplicatePreference = errors.New("duplicate preference")

	// ErrEmptyBallot indicates a ballot with no preferences at all.
	ErrEmptyBallot = errors.New("empty ballot")

	// ErrBallotTooLong indicates a ballot ranking more preferences than
	// there are registered candidates.
	ErrBallotTooLong = errors.New("ballot longer than candidate count")
)

func errDuplicateCandidate(id string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateCandidate, id)
}

func errEmptyCandidateID(index int) error {
	return fmt.Errorf("%w: candidate at position %d", ErrEmptyCandidateID, index)
}

func errStatusDecided(id string, status Status) error {
	return fmt.Errorf("%w: %q is %s", ErrStatusDecided, id, status)
}

// ConfigError reports an invalid counting parameter. It is returned
// before any round begins; no partial count accompanies it.
type ConfigError struct {
	// Parameter names the invalid configuration field.
	Parameter string

	// Value is the rejected value.
	Value any

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: parameter=%s, value=%v: %v", e.Parameter, e.Value, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError for the given parameter.
func NewConfigError(parameter string, value any, err error) *ConfigError {
	return &ConfigError{Parameter: parameter, Value: value, Err: err}
}

// BallotError reports a structurally invalid ballot, identifying its
// position in the input collection. Primary validation belongs to the
// ingestion collaborator, but the pool never silently accepts a ballot
// it cannot count.
type BallotError struct {
	// Position is the zero-based index of the offending ballot in the
	// input collection.
	Position int

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface for BallotError.
func (e *BallotError) Error() string {
	return fmt.Sprintf("invalid ballot at position %d: %v", e.Position, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is.
func (e *BallotError) Unwrap() error { return e.Err }

// NewBallotError creates a BallotError for the ballot at the given position.
func NewBallotError(position int, err error) *BallotError {
	return &BallotError{Position: position, Err: err}
}

// InvariantError reports a vote-conservation failure at a round
// boundary. It indicates a transfer defect, is never recovered from,
// and aborts the count without a result.
type InvariantError struct {
	// Round is the round at whose boundary the check failed.
	Round int

	// Expected is the total original valid ballot weight.
	Expected float64

	// Actual is the observed sum of candidate totals plus exhausted weight.
	Actual float64
}

// Error implements the error interface for InvariantError.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("vote conservation violated at round %d: expected total weight %.9f, found %.9f",
		e.Round, e.Expected, e.Actual)
}
