package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/liamblake/hcvote/internal/domain"
	"github.com/liamblake/hcvote/internal/ports"
)

// Count tallies a single position end to end. It applies the
// trivial-election shortcut — when the candidates do not outnumber the
// vacancies everyone is elected without invoking the algorithm — and
// otherwise constructs an engine and runs the full count.
func Count(ctx context.Context, cfg ElectionConfig, rankings [][]string, opts ...Option) (*domain.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if remaining := remainingCandidates(cfg); len(remaining) <= cfg.Vacancies {
		return trivialResult(cfg, remaining, len(rankings)), nil
	}

	engine, err := NewEngine(cfg, rankings, opts...)
	if err != nil {
		return nil, err
	}
	return engine.Count(ctx)
}

// CountFromSource tallies a position whose ballots come from an
// ingestion adapter such as a CSV loader.
func CountFromSource(ctx context.Context, cfg ElectionConfig, src ports.BallotSource, opts ...Option) (*domain.Result, error) {
	rankings, err := src.Ballots(ctx)
	if err != nil {
		return nil, err
	}
	return Count(ctx, cfg, rankings, opts...)
}

// remainingCandidates returns the candidates still contesting the
// position after pre-count exclusions, in registration order.
func remainingCandidates(cfg ElectionConfig) []domain.Candidate {
	excluded := make(map[string]struct{}, len(cfg.ExcludeFirst))
	for _, id := range cfg.ExcludeFirst {
		excluded[id] = struct{}{}
	}
	var out []domain.Candidate
	for _, c := range cfg.Candidates {
		if _, ok := excluded[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// trivialResult elects every remaining candidate of a position whose
// vacancies equal or exceed its remaining candidate count. The quota is
// undefined for such an election, so no rounds are recorded.
func trivialResult(cfg ElectionConfig, remaining []domain.Candidate, ballots int) *domain.Result {
	elected := make([]domain.Candidate, len(remaining))
	copy(elected, remaining)
	return &domain.Result{
		CountID:     uuid.NewString(),
		Position:    cfg.Name,
		Elected:     elected,
		TotalWeight: float64(ballots),
		Timestamp:   time.Now().UTC(),
	}
}

// Position pairs a position's configuration with its validated ballots,
// ready to count.
type Position struct {
	// Config is the position's election configuration.
	Config ElectionConfig

	// Ballots holds the position's rankings as candidate IDs.
	Ballots [][]string
}

// CountAll tallies several positions sequentially, in the order given.
// When excludeElected is true, candidates elected to an earlier position
// are excluded before round zero of every later position they contest,
// so no candidate wins twice. Counting stops at the first failing
// position.
func CountAll(ctx context.Context, positions []Position, excludeElected bool, opts ...Option) ([]*domain.Result, error) {
	results := make([]*domain.Result, 0, len(positions))
	var elected []string

	for _, pos := range positions {
		cfg := pos.Config
		if excludeElected {
			cfg.ExcludeFirst = appendRegistered(cfg, elected)
		}

		result, err := Count(ctx, cfg, pos.Ballots, opts...)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		for _, c := range result.Elected {
			elected = append(elected, c.ID)
		}
	}
	return results, nil
}

// appendRegistered extends a position's pre-count exclusions with the
// already-elected candidates who actually contest it. IDs foreign to
// the position are ignored.
func appendRegistered(cfg ElectionConfig, elected []string) []string {
	registered := make(map[string]struct{}, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		registered[c.ID] = struct{}{}
	}

	out := make([]string, 0, len(cfg.ExcludeFirst)+len(elected))
	out = append(out, cfg.ExcludeFirst...)
	seen := make(map[string]struct{}, len(out))
	for _, id := range out {
		seen[id] = struct{}{}
	}
	for _, id := range elected {
		if _, ok := registered[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
