package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamblake/hcvote/internal/domain"
)

// stubSource is a ports.BallotSource serving fixed rankings.
type stubSource struct {
	rankings [][]string
	err      error
}

func (s *stubSource) Ballots(context.Context) ([][]string, error) {
	return s.rankings, s.err
}

func TestCount_TrivialElection(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ElectionConfig
		rankings    [][]string
		wantElected []string
	}{
		{
			name: "vacancies equal candidates",
			cfg: ElectionConfig{
				Vacancies:  2,
				Candidates: candidates("a", "b"),
			},
			rankings:    [][]string{{"a", "b"}, {"b", "a"}},
			wantElected: []string{"a", "b"},
		},
		{
			name: "vacancies exceed candidates",
			cfg: ElectionConfig{
				Vacancies:  3,
				Candidates: candidates("a", "b"),
			},
			rankings:    [][]string{{"a"}},
			wantElected: []string{"a", "b"},
		},
		{
			name: "no ballots at all",
			cfg: ElectionConfig{
				Name:       "Secretary",
				Vacancies:  1,
				Candidates: candidates("a"),
			},
			wantElected: []string{"a"},
		},
		{
			name: "pre-count exclusions leave too few contenders",
			cfg: ElectionConfig{
				Vacancies:    2,
				Candidates:   candidates("a", "b", "c"),
				ExcludeFirst: []string{"b"},
			},
			rankings:    [][]string{{"a"}, {"c"}},
			wantElected: []string{"a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Count(context.Background(), tt.cfg, tt.rankings)
			require.NoError(t, err)
			assert.Equal(t, tt.wantElected, electedIDs(result))
			assert.Empty(t, result.Rounds)
			assert.Zero(t, result.Quota)
			assert.NotEmpty(t, result.CountID)
			assert.Equal(t, tt.cfg.Name, result.Position)
		})
	}
}

func TestCount_ContestedElection(t *testing.T) {
	cfg := ElectionConfig{
		Vacancies:  1,
		Candidates: candidates("a", "b", "c"),
	}
	rankings := [][]string{{"a"}, {"a"}, {"a"}, {"b", "a"}, {"c"}}

	result, err := Count(context.Background(), cfg, rankings)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, electedIDs(result))
	assert.NotEmpty(t, result.Rounds, "a contested count records its rounds")
}

func TestCount_InvalidConfig(t *testing.T) {
	_, err := Count(context.Background(), ElectionConfig{}, [][]string{{"a"}})
	require.Error(t, err)
}

func TestCountFromSource(t *testing.T) {
	cfg := ElectionConfig{
		Vacancies:  1,
		Candidates: candidates("a", "b", "c"),
	}

	t.Run("counts the sourced ballots", func(t *testing.T) {
		src := &stubSource{rankings: [][]string{{"a"}, {"a"}, {"a"}, {"b"}, {"c"}}}
		result, err := CountFromSource(context.Background(), cfg, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, electedIDs(result))
	})

	t.Run("propagates source failures", func(t *testing.T) {
		srcErr := errors.New("unreadable ballot file")
		_, err := CountFromSource(context.Background(), cfg, &stubSource{err: srcErr})
		assert.ErrorIs(t, err, srcErr)
	})
}

// TestCountAll_ExcludesElected runs two positions over the same
// candidate field and verifies a first-position winner cannot take the
// second seat as well.
func TestCountAll_ExcludesElected(t *testing.T) {
	field := candidates("platypus", "wombat", "emu", "koala")
	rankings := [][]string{
		{"platypus", "koala", "wombat", "emu"},
		{"platypus", "koala", "wombat", "emu"},
		{"wombat", "emu", "koala", "platypus"},
		{"koala", "platypus", "emu", "wombat"},
		{"emu", "wombat", "platypus", "koala"},
		{"emu", "platypus", "wombat", "koala"},
		{"platypus", "koala", "emu", "wombat"},
		{"emu", "wombat", "platypus", "koala"},
	}

	positions := []Position{
		{Config: ElectionConfig{Name: "President", Vacancies: 1, Candidates: field}, Ballots: rankings},
		{Config: ElectionConfig{Name: "Vice President", Vacancies: 1, Candidates: field}, Ballots: rankings},
	}

	results, err := CountAll(context.Background(), positions, true)
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := electedIDs(results[0])
	second := electedIDs(results[1])
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0], second[0])

	// The second position records the carried-over exclusion.
	require.NotEmpty(t, results[1].Rounds)
	initial := results[1].Rounds[0]
	require.Len(t, initial.Affected, 1)
	assert.Equal(t, first[0], initial.Affected[0].CandidateID)
}

// TestCountAll_NoExclusion leaves carry-over off: the same candidate
// may win both positions.
func TestCountAll_NoExclusion(t *testing.T) {
	field := candidates("a", "b", "c")
	rankings := [][]string{{"a"}, {"a"}, {"a"}, {"b"}, {"c"}}

	positions := []Position{
		{Config: ElectionConfig{Vacancies: 1, Candidates: field}, Ballots: rankings},
		{Config: ElectionConfig{Vacancies: 1, Candidates: field}, Ballots: rankings},
	}

	results, err := CountAll(context.Background(), positions, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, electedIDs(results[0]), electedIDs(results[1]))
}

// TestCountAll_IgnoresForeignElected: a winner who does not contest a
// later position must not appear in its exclusions.
func TestCountAll_IgnoresForeignElected(t *testing.T) {
	positions := []Position{
		{
			Config:  ElectionConfig{Vacancies: 1, Candidates: candidates("x", "y")},
			Ballots: [][]string{{"x"}, {"x"}, {"y"}},
		},
		{
			Config:  ElectionConfig{Vacancies: 1, Candidates: candidates("a", "b", "c")},
			Ballots: [][]string{{"a"}, {"a"}, {"a"}, {"b"}, {"c"}},
		},
	}

	results, err := CountAll(context.Background(), positions, true)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"x"}, electedIDs(results[0]))
	assert.Equal(t, []string{"a"}, electedIDs(results[1]))
	assert.Empty(t, results[1].Rounds[0].Affected)
}

func TestCountAll_StopsOnFailure(t *testing.T) {
	positions := []Position{
		{
			Config:  ElectionConfig{Vacancies: 1, Candidates: candidates("a", "b")},
			Ballots: [][]string{{"a"}, {"b"}, {"a"}},
		},
		{
			Config:  ElectionConfig{Vacancies: 1, Candidates: candidates("a", "b", "c")},
			Ballots: [][]string{{"zebra"}},
		},
	}

	results, err := CountAll(context.Background(), positions, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownCandidate)
	assert.Len(t, results, 1, "results up to the failing position are returned")
}

func TestAppendRegistered(t *testing.T) {
	cfg := ElectionConfig{
		Candidates:   candidates("a", "b", "c"),
		ExcludeFirst: []string{"a"},
	}

	out := appendRegistered(cfg, []string{"b", "a", "z", "b"})
	assert.Equal(t, []string{"a", "b"}, out)
}
