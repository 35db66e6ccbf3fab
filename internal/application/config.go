// Package application orchestrates Hare-Clark counts: it owns election
// configuration, the round controller, the transfer engine, and the
// deterministic tie-break policy.
package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/liamblake/hcvote/internal/domain"
)

// DefaultConservationTolerance is the absolute tolerance used when
// checking the vote-conservation invariant at round boundaries.
const DefaultConservationTolerance = 1e-9

// Package-level validator instance for configuration validation.
var validate = validator.New()

// ElectionConfig specifies one position to be counted: the seats to
// fill, the candidates contesting them, and counting options. All
// fields are validated before any round begins.
type ElectionConfig struct {
	// Name is an optional label for the position, carried into the
	// Result for reporting.
	Name string `yaml:"name" json:"name" validate:"max=255"`

	// Vacancies is the number of seats to fill. Must be positive and,
	// except for the trivial-election shortcut in Count, smaller than
	// the candidate count.
	Vacancies int `yaml:"vacancies" json:"vacancies" validate:"required,min=1"`

	// Candidates lists the contesting candidates in registration order.
	// Registration order is significant: it is the final tie-break.
	Candidates []domain.Candidate `yaml:"candidates" json:"candidates" validate:"required,min=1,dive"`

	// ExcludeFirst names candidates to exclude before round zero, with
	// their ballots redistributing at full value during the initial
	// tally. Used when candidates already elected to another position
	// must not win this one.
	ExcludeFirst []string `yaml:"exclude_first,omitempty" json:"exclude_first,omitempty"`

	// ConservationTolerance overrides the absolute tolerance for the
	// conservation invariant check. Zero means
	// DefaultConservationTolerance.
	ConservationTolerance float64 `yaml:"conservation_tolerance,omitempty" json:"conservation_tolerance,omitempty" validate:"omitempty,gt=0"`
}

// Validate checks the configuration's struct tags and returns a
// descriptive error for the first violation.
func (c ElectionConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("election configuration validation failed: %w", err)
	}
	return nil
}

// tolerance returns the effective conservation tolerance.
func (c ElectionConfig) tolerance() float64 {
	if c.ConservationTolerance > 0 {
		return c.ConservationTolerance
	}
	return DefaultConservationTolerance
}

// CandidateIDs returns the registered candidate identifiers in
// registration order.
func (c ElectionConfig) CandidateIDs() []string {
	ids := make([]string, len(c.Candidates))
	for i, cand := range c.Candidates {
		ids[i] = cand.ID
	}
	return ids
}
