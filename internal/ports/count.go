// Package ports defines the interfaces crossed by infrastructure
// adapters: ballot ingestion on the way in, and count observation on
// the way out. The counting engine itself depends only on these
// interfaces, never on concrete adapters.
package ports

import (
	"context"

	"github.com/liamblake/hcvote/internal/domain"
)

// BallotSource supplies validated, identifier-mapped rankings to a
// count. Implementations own the translation of external formats (CSV
// cells, form exports, one-based indices) into canonical candidate IDs
// and the rejection of malformed rows; the engine re-checks only
// structural validity.
type BallotSource interface {
	// Ballots returns every ranking as an ordered sequence of candidate
	// IDs. The returned slices are owned by the caller.
	Ballots(ctx context.Context) ([][]string, error)
}

// CountInfo describes a count as it begins, for observability.
type CountInfo struct {
	// CountID is the unique identifier stamped on the eventual Result.
	CountID string

	// Position names the position being counted, when known.
	Position string

	// Candidates is the number of registered candidates.
	Candidates int

	// Vacancies is the number of seats being filled.
	Vacancies int

	// TotalWeight is the total valid ballot weight entering the count.
	TotalWeight float64
}

// CountObserver receives count lifecycle notifications. Implementations
// integrate with observability platforms such as Prometheus or
// OpenTelemetry; the engine invokes observers synchronously between
// rounds, so implementations must be cheap and must not block.
type CountObserver interface {
	// CountStarted is invoked once before round zero. The returned
	// context is threaded through the remaining notifications, allowing
	// implementations to attach spans or timers.
	CountStarted(ctx context.Context, info CountInfo) context.Context

	// RoundCompleted is invoked after each round snapshot is appended to
	// the audit trail.
	RoundCompleted(ctx context.Context, info CountInfo, snapshot domain.RoundSnapshot)

	// CountCompleted is invoked exactly once when the count reaches its
	// terminal state or aborts. Exactly one of result and err is non-nil.
	CountCompleted(ctx context.Context, info CountInfo, result *domain.Result, err error)
}
