package ballotio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/liamblake/hcvote/internal/application"
	"github.com/liamblake/hcvote/internal/domain"
)

// PositionSpec carries the metadata a form export cannot express on its
// own: the seats and candidates of each position, in the column order
// the positions appear in the file.
type PositionSpec struct {
	// Name labels the position.
	Name string `yaml:"name" json:"name" validate:"max=255"`

	// Vacancies is the number of seats to fill.
	Vacancies int `yaml:"vacancies" json:"vacancies" validate:"required,min=1"`

	// Candidates lists the position's candidates; the form is expected
	// to hold one preference column per candidate.
	Candidates []domain.Candidate `yaml:"candidates" json:"candidates" validate:"required,min=1,dive"`
}

// FormConfig controls interpretation of a multi-position form export.
type FormConfig struct {
	// IgnoreColumns lists zero-based column indices to skip entirely,
	// such as a timestamp column.
	IgnoreColumns []int `yaml:"ignore_columns" json:"ignore_columns"`

	// IDColumn, when set, is the zero-based column identifying the
	// voter. Duplicate IDs are resolved last-vote-wins, mirroring a
	// voter re-submitting the form.
	IDColumn *int `yaml:"id_column" json:"id_column"`

	// OptionalPreferential permits partial rankings, squeezing blank
	// preference cells.
	OptionalPreferential bool `yaml:"optional_preferential" json:"optional_preferential"`

	// Strict fails the whole load at the first invalid ballot instead
	// of skipping it.
	Strict bool `yaml:"strict" json:"strict"`
}

// FormLoader reads several positions' ballots from one CSV, the layout
// produced by form services: a header row, then one response per row
// with each position's preference columns side by side.
type FormLoader struct {
	cfg FormConfig
}

// NewFormLoader creates a loader with the given configuration.
func NewFormLoader(cfg FormConfig) *FormLoader {
	return &FormLoader{cfg: cfg}
}

// Load reads the export and returns one countable Position per spec, in
// spec order. Invalid ballots follow the Strict/lenient policy of the
// single-position loader; a lenient load drops invalid ballots for the
// affected position only.
func (l *FormLoader) Load(ctx context.Context, r io.Reader, specs []PositionSpec) ([]application.Position, error) {
	for i, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return nil, fmt.Errorf("position spec %d: %w", i, err)
		}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read form csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("form csv has no header row")
	}
	responses := l.dedupe(rows[1:])

	ignored := make(map[int]struct{}, len(l.cfg.IgnoreColumns)+1)
	for _, col := range l.cfg.IgnoreColumns {
		ignored[col] = struct{}{}
	}
	if l.cfg.IDColumn != nil {
		ignored[*l.cfg.IDColumn] = struct{}{}
	}

	positions := make([]application.Position, 0, len(specs))
	next := 0 // next global column to consider
	for _, spec := range specs {
		cols := make([]int, 0, len(spec.Candidates))
		for len(cols) < len(spec.Candidates) {
			if _, skip := ignored[next]; !skip {
				cols = append(cols, next)
			}
			next++
		}

		ballotLoader := NewCSVLoader(CSVConfig{
			OptionalPreferential: l.cfg.OptionalPreferential,
			Strict:               l.cfg.Strict,
		})
		res := newResolver(spec.Candidates)

		var ballots [][]string
		for row, response := range responses {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			cells := make([]string, 0, len(cols))
			for _, col := range cols {
				if col < len(response) {
					cells = append(cells, response[col])
				}
			}

			ranking, err := ballotLoader.translateRow(res, cells, len(spec.Candidates))
			if err != nil {
				if l.cfg.Strict {
					return nil, fmt.Errorf("position %q: %w", spec.Name, domain.NewBallotError(row, err))
				}
				continue
			}
			ballots = append(ballots, ranking)
		}

		positions = append(positions, application.Position{
			Config: application.ElectionConfig{
				Name:       spec.Name,
				Vacancies:  spec.Vacancies,
				Candidates: spec.Candidates,
			},
			Ballots: ballots,
		})
	}
	return positions, nil
}

// dedupe applies last-vote-wins per voter ID when an ID column is
// configured; otherwise every response row is kept.
func (l *FormLoader) dedupe(rows [][]string) [][]string {
	if l.cfg.IDColumn == nil {
		return rows
	}
	col := *l.cfg.IDColumn

	latest := make(map[string]int, len(rows))
	for i, row := range rows {
		if col < len(row) {
			latest[row[col]] = i
		}
	}

	out := make([][]string, 0, len(latest))
	for i, row := range rows {
		if col >= len(row) {
			out = append(out, row)
			continue
		}
		if latest[row[col]] == i {
			out = append(out, row)
		}
	}
	return out
}
