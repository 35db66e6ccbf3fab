package ballotio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamblake/hcvote/internal/domain"
)

var testCandidates = []domain.Candidate{
	{ID: "platypus", Name: "Platypus"},
	{ID: "wombat", Name: "Wombat"},
	{ID: "emu", Name: "Emu"},
	{ID: "koala", Name: "Koala"},
}

func TestCSVLoader_FullPreferential(t *testing.T) {
	input := strings.Join([]string{
		"Platypus,Koala,Wombat,Emu",
		"wombat,emu,koala,platypus",
		"3,2,4,1",
	}, "\n")

	loader := NewCSVLoader(CSVConfig{})
	report, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)

	assert.Equal(t, [][]string{
		{"platypus", "koala", "wombat", "emu"},
		{"wombat", "emu", "koala", "platypus"},
		{"emu", "wombat", "koala", "platypus"},
	}, report.Ballots)
}

func TestCSVLoader_HeaderSkipped(t *testing.T) {
	input := "First,Second,Third,Fourth\nPlatypus,Wombat,Emu,Koala\n"

	loader := NewCSVLoader(CSVConfig{Header: true})
	report, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.NoError(t, err)
	require.Len(t, report.Ballots, 1)
	assert.Equal(t, []string{"platypus", "wombat", "emu", "koala"}, report.Ballots[0])
}

func TestCSVLoader_OptionalPreferentialSqueezesGaps(t *testing.T) {
	// The voter skipped their second preference cell entirely.
	input := "Platypus,,Emu\nWombat\n"

	loader := NewCSVLoader(CSVConfig{OptionalPreferential: true})
	report, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"platypus", "emu"},
		{"wombat"},
	}, report.Ballots)
}

func TestCSVLoader_FullPreferentialRejectsPartial(t *testing.T) {
	input := "Platypus,Wombat,Emu\n"

	loader := NewCSVLoader(CSVConfig{Strict: true})
	_, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.Error(t, err)

	var berr *domain.BallotError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 0, berr.Position)
	assert.Contains(t, err.Error(), "expected 4 preferences")
}

func TestCSVLoader_StrictAbortsOnUnknownName(t *testing.T) {
	input := strings.Join([]string{
		"Platypus,Wombat,Emu,Koala",
		"Platypuss,Wombat,Emu,Koala",
	}, "\n")

	loader := NewCSVLoader(CSVConfig{Strict: true})
	_, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownCandidate)

	var berr *domain.BallotError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 1, berr.Position)
	assert.Contains(t, err.Error(), `closest registered name is "Platypus"`)
}

func TestCSVLoader_LenientSkipsAndReports(t *testing.T) {
	input := strings.Join([]string{
		"Platypus,Wombat,Emu,Koala",
		"Nobody,Wombat,Emu,Koala",
		"Platypus,Platypus,Emu,Koala",
		"Koala,Emu,Wombat,Platypus",
	}, "\n")

	loader := NewCSVLoader(CSVConfig{})
	report, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.NoError(t, err)

	require.Len(t, report.Ballots, 2)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 1, report.Skipped[0].Row)
	assert.ErrorIs(t, report.Skipped[0].Err, domain.ErrUnknownCandidate)
	assert.Equal(t, 2, report.Skipped[1].Row)
	assert.ErrorIs(t, report.Skipped[1].Err, domain.ErrDuplicatePreference)
}

func TestCSVLoader_IndexOutOfRange(t *testing.T) {
	input := "1,2,3,5\n"

	loader := NewCSVLoader(CSVConfig{Strict: true})
	_, err := loader.Load(context.Background(), strings.NewReader(input), testCandidates)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownCandidate)
	assert.Contains(t, err.Error(), "out of range 1..4")
}

func TestCSVLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewCSVLoader(CSVConfig{})
	_, err := loader.Load(ctx, strings.NewReader("Platypus,Wombat,Emu,Koala\n"), testCandidates)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ballots.csv")
	content := "pref1,pref2,pref3,pref4\nPlatypus,Wombat,Emu,Koala\nEmu,Koala,Platypus,Wombat\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src := NewFileSource(path, testCandidates, CSVConfig{Header: true})
	ballots, err := src.Ballots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"platypus", "wombat", "emu", "koala"},
		{"emu", "koala", "platypus", "wombat"},
	}, ballots)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.csv"), testCandidates, CSVConfig{})
	_, err := src.Ballots(context.Background())
	assert.Error(t, err)
}
