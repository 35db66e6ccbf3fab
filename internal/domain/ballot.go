package domain

import "fmt"

// Ballot is one ranked vote. Preferences are stored as registration
// indices into the Registry, the current weight starts at 1.0, and the
// pointer identifies the next preference to consider. The pointer only
// moves forward: a passed preference is never reconsidered, which is
// sound because status transitions are one-directional.
type Ballot struct {
	prefs     []int
	weight    float64
	ptr       int
	exhausted bool
	// assignedTo is the registration index of the candidate currently
	// holding this ballot, or -1 when unassigned or exhausted.
	assignedTo int
}

// Weight returns the ballot's current weight. Exhausted ballots retain
// their weight for conservation accounting.
func (b *Ballot) Weight() float64 { return b.weight }

// Exhausted reports whether the ballot has run out of Hopeful preferences.
func (b *Ballot) Exhausted() bool { return b.exhausted }

// AssignedTo returns the registration index of the candidate currently
// holding the ballot, or -1.
func (b *Ballot) AssignedTo() int { return b.assignedTo }

// Preferences returns a copy of the ballot's ranking as registration
// indices, for audit purposes.
func (b *Ballot) Preferences() []int {
	out := make([]int, len(b.prefs))
	copy(out, b.prefs)
	return out
}

// Pool holds every ballot of one count. The ballot set is fixed at
// construction; only weights, pointers, and assignments mutate.
//
// Pool is not safe for concurrent use. Each count owns its own instance.
type Pool struct {
	ballots []Ballot
	// assigned lists, per candidate, the pool indices of ballots the
	// candidate currently holds.
	assigned [][]int
	// exhaustedWeight accumulates the weight of exhausted ballots so the
	// conservation invariant can be checked at every round boundary.
	exhaustedWeight float64
}

// NewPool validates and ingests ballots, resolving candidate IDs against
// the registry. Each ranking must be non-empty, reference only
// registered candidates, contain no duplicates, and be no longer than
// the candidate count. The first structural violation is returned as a
// BallotError identifying the ballot's position; no partial pool is
// returned.
func NewPool(reg *Registry, rankings [][]string) (*Pool, error) {
	p := &Pool{
		ballots:  make([]Ballot, 0, len(rankings)),
		assigned: make([][]int, reg.Len()),
	}

	for pos, ranking := range rankings {
		if len(ranking) == 0 {
			return nil, NewBallotError(pos, ErrEmptyBallot)
		}
		if len(ranking) > reg.Len() {
			return nil, NewBallotError(pos, ErrBallotTooLong)
		}

		prefs := make([]int, len(ranking))
		seen := make(map[int]struct{}, len(ranking))
		for n, id := range ranking {
			i, ok := reg.IndexOf(id)
			if !ok {
				return nil, NewBallotError(pos, errUnknownCandidate(id))
			}
			if _, dup := seen[i]; dup {
				return nil, NewBallotError(pos, errDuplicatePreference(id))
			}
			seen[i] = struct{}{}
			prefs[n] = i
		}

		p.ballots = append(p.ballots, Ballot{
			prefs:      prefs,
			weight:     1.0,
			assignedTo: -1,
		})
	}

	return p, nil
}

func errUnknownCandidate(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCandidate, id)
}

func errDuplicatePreference(id string) error {
	return fmt.Errorf("%w: %q", ErrDuplicatePreference, id)
}

// Len returns the number of ballots in the pool.
func (p *Pool) Len() int { return len(p.ballots) }

// TotalWeight returns the total original valid ballot weight. Every
// ballot enters the pool at weight 1.0.
func (p *Pool) TotalWeight() float64 { return float64(len(p.ballots)) }

// ExhaustedWeight returns the cumulative weight of exhausted ballots.
func (p *Pool) ExhaustedWeight() float64 { return p.exhaustedWeight }

// Ballot returns the ballot at pool index b for inspection.
func (p *Pool) Ballot(b int) *Ballot { return &p.ballots[b] }

// Advance moves ballot b forward to its next preference whose candidate
// satisfies eligible, assigns the ballot to that candidate, and returns
// the candidate's registration index. If no eligible preference remains
// the ballot is marked exhausted, its weight joins the exhausted
// accumulator, and ok is false. The pointer never moves backward.
func (p *Pool) Advance(b int, eligible func(candidate int) bool) (candidate int, ok bool) {
	bl := &p.ballots[b]
	if bl.exhausted {
		return -1, false
	}
	for bl.ptr < len(bl.prefs) {
		c := bl.prefs[bl.ptr]
		bl.ptr++
		if eligible(c) {
			bl.assignedTo = c
			p.assigned[c] = append(p.assigned[c], b)
			return c, true
		}
	}
	bl.exhausted = true
	bl.assignedTo = -1
	p.exhaustedWeight += bl.weight
	return -1, false
}

// ScaleWeight multiplies ballot b's weight by the given transfer value.
func (p *Pool) ScaleWeight(b int, value float64) {
	p.ballots[b].weight *= value
}

// Assigned returns the pool indices of the ballots candidate c
// currently holds.
func (p *Pool) Assigned(c int) []int { return p.assigned[c] }

// TakeAssigned removes and returns candidate c's ballot list in
// preparation for a batch transfer. The transfer engine must process
// the whole batch before the next round decision.
func (p *Pool) TakeAssigned(c int) []int {
	ballots := p.assigned[c]
	p.assigned[c] = nil
	for _, b := range ballots {
		p.ballots[b].assignedTo = -1
	}
	return ballots
}
