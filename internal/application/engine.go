package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/liamblake/hcvote/internal/domain"
	"github.com/liamblake/hcvote/internal/ports"
)

// State is the round controller's state. A count starts in
// StateCounting and halts permanently in StateComplete.
type State string

const (
	// StateCounting means rounds are still being evaluated.
	StateCounting State = "counting"

	// StateComplete means the count reached its terminal state; no
	// further mutation occurs.
	StateComplete State = "complete"
)

// ErrAlreadyCounted is returned when Count is called twice on the same
// engine. A count is not resumable; construct a fresh engine to recount.
var ErrAlreadyCounted = errors.New("count already performed on this engine")

// Engine is the round controller for one count. It owns the only
// mutable state of the computation (candidate totals, ballot weights and
// pointers, the audit trail) and drives the quota check, election,
// surplus transfer, exclusion, and termination logic.
//
// An Engine counts exactly once and is not safe for concurrent use.
// Concurrent counts must each construct their own engine.
type Engine struct {
	cfg   ElectionConfig
	reg   *domain.Registry
	pool  *domain.Pool
	quota float64

	totalWeight float64
	tolerance   float64

	state   State
	counted bool

	rounds []domain.RoundSnapshot
	// history keeps every completed round's totals in registration
	// order; the tie-break policy walks it backwards.
	history [][]float64

	// excludeFirst holds registration indices to exclude before round zero.
	excludeFirst []int

	observers []ports.CountObserver
	countID   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithObservers attaches count observers. Observers are notified
// synchronously in the order given.
func WithObservers(obs ...ports.CountObserver) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, obs...)
	}
}

// NewEngine validates the configuration and ballots and prepares a
// count. It fails fast, before any round begins, with a
// domain.ConfigError for invalid parameters (non-positive vacancies,
// vacancies not smaller than the candidate count, zero ballot weight,
// unknown pre-count exclusions) or a domain.BallotError for the first
// structurally invalid ballot.
func NewEngine(cfg ElectionConfig, rankings [][]string, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := domain.NewRegistry(cfg.Candidates)
	if err != nil {
		return nil, err
	}

	pool, err := domain.NewPool(reg, rankings)
	if err != nil {
		return nil, err
	}

	quota, err := domain.DroopQuota(pool.TotalWeight(), cfg.Vacancies, reg.Len())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		reg:         reg,
		pool:        pool,
		quota:       quota,
		totalWeight: pool.TotalWeight(),
		tolerance:   cfg.tolerance(),
		state:       StateCounting,
		countID:     uuid.NewString(),
	}

	for _, id := range cfg.ExcludeFirst {
		i, ok := reg.IndexOf(id)
		if !ok {
			return nil, domain.NewConfigError("exclude_first", id, domain.ErrUnknownCandidate)
		}
		e.excludeFirst = append(e.excludeFirst, i)
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CountID returns the unique identifier stamped on this count's result.
func (e *Engine) CountID() string { return e.countID }

// Quota returns the Droop quota the count runs against.
func (e *Engine) Quota() float64 { return e.quota }

// State returns the controller's current state.
func (e *Engine) State() State { return e.state }

// Count runs the full tally and returns the ordered election result
// with its audit trail. It may be called once; subsequent calls return
// ErrAlreadyCounted. The context is passed to observers only; the count
// itself performs no I/O and does not block.
func (e *Engine) Count(ctx context.Context) (*domain.Result, error) {
	if e.counted {
		return nil, ErrAlreadyCounted
	}
	e.counted = true

	info := ports.CountInfo{
		CountID:     e.countID,
		Position:    e.cfg.Name,
		Candidates:  e.reg.Len(),
		Vacancies:   e.cfg.Vacancies,
		TotalWeight: e.totalWeight,
	}
	for _, o := range e.observers {
		ctx = o.CountStarted(ctx, info)
	}

	result, err := e.count(ctx, info)
	for _, o := range e.observers {
		o.CountCompleted(ctx, info, result, err)
	}
	return result, err
}

// count drives the round loop. Each iteration performs exactly one
// batch action (initial tally, election(s), exclusion, or the
// elect-remaining shortcut) and appends one snapshot.
func (e *Engine) count(ctx context.Context, info ports.CountInfo) (*domain.Result, error) {
	if err := e.initialTally(ctx, info); err != nil {
		return nil, err
	}

	for round := 1; ; round++ {
		// Each decision round removes at least one candidate from the
		// Hopeful pool, so the loop is bounded by the candidate count.
		if round > e.reg.Len() {
			return nil, fmt.Errorf("count failed to terminate within %d rounds", e.reg.Len())
		}

		if e.reg.ElectedCount() == e.cfg.Vacancies {
			break
		}

		hopefuls := e.reg.Hopefuls()
		remaining := e.cfg.Vacancies - e.reg.ElectedCount()

		var snap domain.RoundSnapshot
		switch {
		case len(hopefuls) <= remaining:
			snap = e.electRemaining(round, hopefuls)
		case e.anyAtQuota(hopefuls):
			snap = e.electAtQuota(round)
		default:
			snap = e.excludeLowest(round, hopefuls)
		}

		if err := e.endRound(ctx, info, snap); err != nil {
			return nil, err
		}

		if e.state == StateComplete {
			break
		}
	}

	e.state = StateComplete
	return &domain.Result{
		CountID:         e.countID,
		Position:        e.cfg.Name,
		Elected:         e.reg.Elected(),
		Rounds:          e.rounds,
		Quota:           e.quota,
		TotalWeight:     e.totalWeight,
		ExhaustedWeight: e.pool.ExhaustedWeight(),
		Timestamp:       time.Now().UTC(),
	}, nil
}

// initialTally applies pre-count exclusions, assigns every ballot to its
// first eligible preference at full weight, and records round zero.
// A ballot ranking only pre-excluded candidates exhausts immediately.
func (e *Engine) initialTally(ctx context.Context, info ports.CountInfo) error {
	var affected []domain.Transfer
	for _, i := range e.excludeFirst {
		if err := e.reg.Exclude(i); err != nil {
			return err
		}
		affected = append(affected, domain.Transfer{
			CandidateID: e.reg.Candidate(i).ID,
			Value:       1,
		})
	}

	for b := 0; b < e.pool.Len(); b++ {
		if c, ok := e.pool.Advance(b, e.reg.Hopeful); ok {
			e.reg.AddToTotal(c, e.pool.Ballot(b).Weight())
		}
	}

	return e.endRound(ctx, info, e.snapshot(0, domain.ActionFirstPreferences, affected))
}

// anyAtQuota reports whether any Hopeful candidate currently meets quota.
func (e *Engine) anyAtQuota(hopefuls []int) bool {
	for _, i := range hopefuls {
		if e.atQuota(i) {
			return true
		}
	}
	return false
}

// atQuota compares a candidate's total against the quota, tolerating
// floating-point dust from fractional transfers.
func (e *Engine) atQuota(i int) bool {
	return e.reg.Total(i) >= e.quota-e.tolerance
}

// electAtQuota elects every Hopeful candidate at or above quota, highest
// total first, applying each surplus transfer before evaluating the
// next. Candidates pushed over quota by a transfer are elected in the
// same round, until no Hopeful meets quota or all vacancies fill.
func (e *Engine) electAtQuota(round int) domain.RoundSnapshot {
	var affected []domain.Transfer
	for e.reg.ElectedCount() < e.cfg.Vacancies {
		var atQuota []int
		for _, i := range e.reg.Hopefuls() {
			if e.atQuota(i) {
				atQuota = append(atQuota, i)
			}
		}
		if len(atQuota) == 0 {
			break
		}

		c := e.pickForElection(atQuota)
		// Elect before transferring so the candidate is no longer an
		// eligible destination for their own ballots.
		mustTransition(e.reg.Elect(c))
		value := e.transferSurplus(c)
		affected = append(affected, domain.Transfer{
			CandidateID: e.reg.Candidate(c).ID,
			Value:       value,
		})
	}

	snap := e.snapshot(round, domain.ActionElection, affected)
	if e.reg.ElectedCount() == e.cfg.Vacancies {
		e.state = StateComplete
	}
	return snap
}

// electRemaining elects every remaining Hopeful candidate, in descending
// order of current total, when they no more than fill the remaining
// vacancies. No weight moves. Recorded as one round.
func (e *Engine) electRemaining(round int, hopefuls []int) domain.RoundSnapshot {
	var affected []domain.Transfer
	pending := make([]int, len(hopefuls))
	copy(pending, hopefuls)

	for len(pending) > 0 {
		c := e.pickForElection(pending)
		mustTransition(e.reg.Elect(c))
		affected = append(affected, domain.Transfer{
			CandidateID: e.reg.Candidate(c).ID,
			Value:       0,
		})
		pending = remove(pending, c)
	}

	e.state = StateComplete
	return e.snapshot(round, domain.ActionElectRemaining, affected)
}

// excludeLowest excludes the Hopeful candidate with the lowest total and
// transfers their ballots at full current weight.
func (e *Engine) excludeLowest(round int, hopefuls []int) domain.RoundSnapshot {
	c := e.pickForExclusion(hopefuls)
	mustTransition(e.reg.Exclude(c))
	e.transferExclusion(c)

	return e.snapshot(round, domain.ActionExclusion, []domain.Transfer{
		{CandidateID: e.reg.Candidate(c).ID, Value: 1},
	})
}

// snapshot captures the post-round totals for the audit trail.
func (e *Engine) snapshot(round int, action domain.RoundAction, affected []domain.Transfer) domain.RoundSnapshot {
	totals := make(map[string]float64, e.reg.Len())
	for i := 0; i < e.reg.Len(); i++ {
		totals[e.reg.Candidate(i).ID] = e.reg.Total(i)
	}
	return domain.RoundSnapshot{
		Round:           round,
		Action:          action,
		Affected:        affected,
		Totals:          totals,
		ExhaustedWeight: e.pool.ExhaustedWeight(),
	}
}

// endRound appends the snapshot to the audit trail, verifies vote
// conservation, records the totals for the tie-break history, and
// notifies observers. A conservation failure aborts the count.
func (e *Engine) endRound(ctx context.Context, info ports.CountInfo, snap domain.RoundSnapshot) error {
	e.rounds = append(e.rounds, snap)
	e.history = append(e.history, e.reg.Totals())

	if err := e.checkConservation(snap.Round); err != nil {
		return err
	}

	for _, o := range e.observers {
		o.RoundCompleted(ctx, info, snap)
	}
	return nil
}

// checkConservation verifies that the active candidate totals plus the
// cumulative exhausted weight still equal the original ballot weight.
func (e *Engine) checkConservation(round int) error {
	actual := e.reg.ActiveWeight() + e.pool.ExhaustedWeight()
	if math.Abs(actual-e.totalWeight) > e.tolerance {
		return &domain.InvariantError{
			Round:    round,
			Expected: e.totalWeight,
			Actual:   actual,
		}
	}
	return nil
}

// mustTransition panics on a status-transition error. Transitions inside
// the round loop only operate on candidates just verified Hopeful, so a
// failure here is a controller defect, not an input problem.
func mustTransition(err error) {
	if err != nil {
		panic(err)
	}
}

func remove(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
