package instance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"q.log/twophase/model"
	"q.log/twophase/simplex"
)

func TestRead(t *testing.T) {
	lp, err := NewReader("testdata/small.mps", true).Read()
	require.NoError(t, err)

	assert.True(t, lp.Maximize)
	assert.Equal(t, []float64{3, 2}, lp.Objective)

	want := []model.Constraint{
		{Coefficients: []float64{1, 1}, Relation: model.LessEq, RHS: 4},
		{Coefficients: []float64{1, 3}, Relation: model.LessEq, RHS: 6},
		{Coefficients: []float64{0, 1}, Relation: model.GreaterEq, RHS: 0.5},
		// upper bound of X1
		{Coefficients: []float64{1, 0}, Relation: model.LessEq, RHS: 3},
	}
	assert.Equal(t, want, lp.Constraints)
}

func TestReadSolves(t *testing.T) {
	lp, err := NewReader("testdata/small.mps", true).Read()
	require.NoError(t, err)

	res, err := simplex.New().Solve(context.Background(), lp)
	require.NoError(t, err)
	require.True(t, res.IsOptimal(), res.Message)
	assert.InDelta(t, 11, res.Objective, 1e-9)
	assert.InDeltaSlice(t, []float64{3, 1}, res.Values, 1e-9)
}

func TestReadNegativeLowerBound(t *testing.T) {
	_, err := NewReader("testdata/negative_bound.mps", false).Read()
	assert.ErrorIs(t, err, model.ErrInvalidProgram)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewReader("testdata/missing.mps", false).Read()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidProgram)
}
