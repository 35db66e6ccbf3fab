// Package ballotio provides ingestion adapters that translate external
// ballot representations (CSV exports, form responses) into the
// canonical candidate identifiers the counting engine accepts.
package ballotio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/liamblake/hcvote/internal/domain"
)

// foldCaser is a package-level Unicode case folder so candidate names
// match regardless of case, including non-ASCII names.
var foldCaser = cases.Fold()

// suggestionMaxDistance caps how far a misspelling may be from a
// registered name before the error stops offering a suggestion.
const suggestionMaxDistance = 3

// resolver maps external ballot cells to canonical candidate IDs.
// A cell may be a candidate ID, a display name, or a one-based
// registration index (the common spreadsheet convention).
type resolver struct {
	candidates []domain.Candidate
	byFolded   map[string]string
}

func newResolver(candidates []domain.Candidate) *resolver {
	r := &resolver{
		candidates: candidates,
		byFolded:   make(map[string]string, len(candidates)*2),
	}
	for _, c := range candidates {
		r.byFolded[foldCaser.String(c.ID)] = c.ID
		r.byFolded[foldCaser.String(c.Name)] = c.ID
	}
	return r
}

// resolve translates one cell to a candidate ID. Unknown names are
// wrapped in domain.ErrUnknownCandidate, with the nearest registered
// name suggested when the edit distance is small.
func (r *resolver) resolve(cell string) (string, error) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty preference", domain.ErrUnknownCandidate)
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 || n > len(r.candidates) {
			return "", fmt.Errorf("%w: preference index %d out of range 1..%d",
				domain.ErrUnknownCandidate, n, len(r.candidates))
		}
		return r.candidates[n-1].ID, nil
	}

	folded := foldCaser.String(trimmed)
	if id, ok := r.byFolded[folded]; ok {
		return id, nil
	}

	if name, dist := r.nearest(folded); dist <= suggestionMaxDistance {
		return "", fmt.Errorf("%w: %q (closest registered name is %q)",
			domain.ErrUnknownCandidate, trimmed, name)
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownCandidate, trimmed)
}

// nearest returns the registered display name with the smallest
// Levenshtein distance from the folded input.
func (r *resolver) nearest(folded string) (string, int) {
	bestName := ""
	bestDist := -1
	for _, c := range r.candidates {
		d := levenshtein.ComputeDistance(folded, foldCaser.String(c.Name))
		if bestDist < 0 || d < bestDist {
			bestName, bestDist = c.Name, d
		}
	}
	return bestName, bestDist
}
