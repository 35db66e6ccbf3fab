// Package domain contains pure, dependency-light domain models and types
// for the Hare-Clark counting engine.
package domain

// Status describes where a candidate sits in the count.
// Transitions are one-directional: a candidate starts Hopeful and moves
// to Elected or Excluded exactly once, never back.
type Status string

const (
	// StatusHopeful marks a candidate who is neither elected nor excluded
	// and is still eligible to receive transferred votes.
	StatusHopeful Status = "hopeful"

	// StatusElected marks a candidate who has filled a vacancy.
	StatusElected Status = "elected"

	// StatusExcluded marks a candidate removed from the count after
	// holding the lowest total, or excluded before the count began.
	StatusExcluded Status = "excluded"
)

// Candidate identifies a single candidate within one election.
// The ID is the canonical identifier ballots reference; Name is the
// display form shown in reports and may equal the ID.
type Candidate struct {
	// ID uniquely identifies this candidate within an election.
	ID string `yaml:"id" json:"id" validate:"required,min=1"`

	// Name is the human-readable display name.
	Name string `yaml:"name" json:"name"`
}

// Registry is the canonical, immutable set of candidates for one count.
// The candidate set is fixed at construction; only status, vote totals,
// and election/exclusion order mutate during counting. Registration
// order is significant: it is the final fallback for tie-breaking.
//
// Registry is not safe for concurrent use. Each count owns its own
// instance.
type Registry struct {
	candidates []Candidate
	index      map[string]int

	status  []Status
	totals  []float64
	elected []int // registration indices in election order
	// decisionOrder records the 1-based round-trip order in which each
	// candidate left the Hopeful pool, zero while still Hopeful.
	decisionOrder []int
	decisions     int
}

// NewRegistry builds a Registry from the given candidates, preserving
// their order. It returns ErrDuplicateCandidate wrapped with the
// offending ID if two candidates share an identifier, and
// ErrEmptyCandidateID if any identifier is blank.
func NewRegistry(candidates []Candidate) (*Registry, error) {
	r := &Registry{
		candidates:    make([]Candidate, len(candidates)),
		index:         make(map[string]int, len(candidates)),
		status:        make([]Status, len(candidates)),
		totals:        make([]float64, len(candidates)),
		decisionOrder: make([]int, len(candidates)),
	}
	copy(r.candidates, candidates)

	for i, c := range r.candidates {
		if c.ID == "" {
			return nil, errEmptyCandidateID(i)
		}
		if _, exists := r.index[c.ID]; exists {
			return nil, errDuplicateCandidate(c.ID)
		}
		if c.Name == "" {
			r.candidates[i].Name = c.ID
		}
		r.index[c.ID] = i
		r.status[i] = StatusHopeful
	}
	return r, nil
}

// Len returns the number of registered candidates.
func (r *Registry) Len() int { return len(r.candidates) }

// IndexOf returns the registration index for a candidate ID.
func (r *Registry) IndexOf(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Candidate returns the candidate registered at index i.
func (r *Registry) Candidate(i int) Candidate { return r.candidates[i] }

// Status returns the current status of the candidate at index i.
func (r *Registry) Status(i int) Status { return r.status[i] }

// Hopeful reports whether the candidate at index i is still in the
// running. This is the eligibility predicate ballots advance against.
func (r *Registry) Hopeful(i int) bool { return r.status[i] == StatusHopeful }

// Total returns the current vote total of the candidate at index i.
func (r *Registry) Total(i int) float64 { return r.totals[i] }

// AddToTotal accumulates transferred weight onto a candidate's total.
func (r *Registry) AddToTotal(i int, weight float64) { r.totals[i] += weight }

// SetTotal overwrites a candidate's total. Used by the transfer engine
// to pin an elected candidate's total at the quota and zero an excluded
// candidate's total.
func (r *Registry) SetTotal(i int, weight float64) { r.totals[i] = weight }

// Elect transitions the candidate at index i from Hopeful to Elected and
// records their position in the election order. It returns
// ErrStatusDecided if the candidate has already left the Hopeful pool.
func (r *Registry) Elect(i int) error {
	if r.status[i] != StatusHopeful {
		return errStatusDecided(r.candidates[i].ID, r.status[i])
	}
	r.status[i] = StatusElected
	r.elected = append(r.elected, i)
	r.decisions++
	r.decisionOrder[i] = r.decisions
	return nil
}

// Exclude transitions the candidate at index i from Hopeful to Excluded.
// It returns ErrStatusDecided if the candidate has already left the
// Hopeful pool.
func (r *Registry) Exclude(i int) error {
	if r.status[i] != StatusHopeful {
		return errStatusDecided(r.candidates[i].ID, r.status[i])
	}
	r.status[i] = StatusExcluded
	r.decisions++
	r.decisionOrder[i] = r.decisions
	return nil
}

// Elected returns the elected candidates in the order they were elected.
func (r *Registry) Elected() []Candidate {
	out := make([]Candidate, len(r.elected))
	for n, i := range r.elected {
		out[n] = r.candidates[i]
	}
	return out
}

// ElectedCount returns how many candidates have been elected so far.
func (r *Registry) ElectedCount() int { return len(r.elected) }

// Hopefuls returns the registration indices of all Hopeful candidates,
// in registration order.
func (r *Registry) Hopefuls() []int {
	var out []int
	for i, s := range r.status {
		if s == StatusHopeful {
			out = append(out, i)
		}
	}
	return out
}

// Totals returns a copy of every candidate's current total, indexed by
// registration order. The copy is safe to retain in round snapshots.
func (r *Registry) Totals() []float64 {
	out := make([]float64, len(r.totals))
	copy(out, r.totals)
	return out
}

// ActiveWeight sums the totals of every candidate still holding weight
// (Hopeful and Elected). Excluded candidates always hold zero.
func (r *Registry) ActiveWeight() float64 {
	var sum float64
	for _, t := range r.totals {
		sum += t
	}
	return sum
}
