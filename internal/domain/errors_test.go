package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("vacancies", 0, ErrInvalidVacancies)

	assert.ErrorIs(t, err, ErrInvalidVacancies)
	assert.Contains(t, err.Error(), "vacancies")
	assert.Contains(t, err.Error(), "0")

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "vacancies", cerr.Parameter)
}

func TestBallotError(t *testing.T) {
	err := NewBallotError(7, ErrDuplicatePreference)

	assert.ErrorIs(t, err, ErrDuplicatePreference)
	assert.Contains(t, err.Error(), "position 7")

	var berr *BallotError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, 7, berr.Position)
}

func TestInvariantError(t *testing.T) {
	err := &InvariantError{Round: 3, Expected: 10, Actual: 9.5}

	assert.Contains(t, err.Error(), "round 3")
	assert.Contains(t, err.Error(), "conservation")
}
