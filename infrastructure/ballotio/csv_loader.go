package ballotio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/liamblake/hcvote/internal/domain"
	"github.com/liamblake/hcvote/internal/ports"
)

// CSVConfig controls how a single-position ballot CSV is interpreted.
type CSVConfig struct {
	// Header skips the first row when true.
	Header bool `yaml:"header" json:"header"`

	// OptionalPreferential permits ballots that rank fewer candidates
	// than are registered. Blank cells are squeezed out so later
	// preferences close the gap. When false, every row must rank every
	// candidate exactly once.
	OptionalPreferential bool `yaml:"optional_preferential" json:"optional_preferential"`

	// Strict fails the whole load at the first invalid row. When false,
	// invalid rows are skipped and reported in the LoadReport.
	Strict bool `yaml:"strict" json:"strict"`
}

// SkippedBallot records a row rejected during a lenient load.
type SkippedBallot struct {
	// Row is the zero-based data row index (excluding any header).
	Row int

	// Err explains why the row was rejected.
	Err error
}

// LoadReport is the outcome of a CSV load: the accepted rankings plus
// any rows skipped in lenient mode.
type LoadReport struct {
	// Ballots holds the accepted rankings as canonical candidate IDs.
	Ballots [][]string

	// Skipped lists rejected rows. Always empty under Strict, which
	// fails instead.
	Skipped []SkippedBallot
}

// CSVLoader reads one position's ballots from a CSV whose cells are
// candidate names, IDs, or one-based indices — the format produced by
// exporting a ranked-choice spreadsheet.
type CSVLoader struct {
	cfg CSVConfig
}

// NewCSVLoader creates a loader with the given configuration.
func NewCSVLoader(cfg CSVConfig) *CSVLoader {
	return &CSVLoader{cfg: cfg}
}

// Load reads and validates every row against the registered candidates.
// Under Strict the first invalid row aborts the load with a
// domain.BallotError identifying it; otherwise invalid rows are
// collected in the report.
func (l *CSVLoader) Load(ctx context.Context, r io.Reader, candidates []domain.Candidate) (*LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ballot csv: %w", err)
	}
	if l.cfg.Header && len(rows) > 0 {
		rows = rows[1:]
	}

	res := newResolver(candidates)
	report := &LoadReport{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ranking, err := l.translateRow(res, row, len(candidates))
		if err != nil {
			berr := domain.NewBallotError(i, err)
			if l.cfg.Strict {
				return nil, berr
			}
			report.Skipped = append(report.Skipped, SkippedBallot{Row: i, Err: berr})
			continue
		}
		report.Ballots = append(report.Ballots, ranking)
	}
	return report, nil
}

// translateRow resolves one CSV row into an ordered ranking of
// candidate IDs, enforcing the configured preferential rules.
func (l *CSVLoader) translateRow(res *resolver, row []string, candidateCount int) ([]string, error) {
	cells := row
	if l.cfg.OptionalPreferential {
		cells = squeezeGaps(row)
	}
	if len(cells) == 0 {
		return nil, domain.ErrEmptyBallot
	}
	if len(cells) > candidateCount {
		return nil, domain.ErrBallotTooLong
	}
	if !l.cfg.OptionalPreferential && len(cells) != candidateCount {
		return nil, fmt.Errorf("expected %d preferences, found %d", candidateCount, len(cells))
	}

	ranking := make([]string, 0, len(cells))
	seen := make(map[string]struct{}, len(cells))
	for _, cell := range cells {
		id, err := res.resolve(cell)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicatePreference, id)
		}
		seen[id] = struct{}{}
		ranking = append(ranking, id)
	}
	return ranking, nil
}

// squeezeGaps drops blank cells so a ballot that skipped a middle
// preference still forms a contiguous ranking.
func squeezeGaps(row []string) []string {
	out := make([]string, 0, len(row))
	for _, cell := range row {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FileSource adapts a CSV file on disk into a ports.BallotSource.
// In lenient mode skipped rows are silently dropped; callers needing
// the skip report should use CSVLoader.Load directly.
type FileSource struct {
	path       string
	candidates []domain.Candidate
	loader     *CSVLoader
}

var _ ports.BallotSource = (*FileSource)(nil)

// NewFileSource creates a BallotSource reading the CSV at path.
func NewFileSource(path string, candidates []domain.Candidate, cfg CSVConfig) *FileSource {
	return &FileSource{
		path:       path,
		candidates: candidates,
		loader:     NewCSVLoader(cfg),
	}
}

// Ballots implements ports.BallotSource.
func (s *FileSource) Ballots(ctx context.Context) ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ballot csv: %w", err)
	}
	defer f.Close()

	report, err := s.loader.Load(ctx, f, s.candidates)
	if err != nil {
		return nil, err
	}
	return report.Ballots, nil
}
