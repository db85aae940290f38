package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVectorSelector(t *testing.T) {
	q, err := Parse("vec(cell, signed)")
	require.NoError(t, err)
	require.Equal(t, SelectVector, q.Selector.Kind)
	require.Equal(t, "cell", q.Selector.Axis)
	require.Equal(t, "signed", q.Selector.Name)
	require.Empty(t, q.Stages)
}

func TestParseScalarSelector(t *testing.T) {
	q, err := Parse("scalar(version)")
	require.NoError(t, err)
	require.Equal(t, SelectScalar, q.Selector.Kind)
	require.Equal(t, "version", q.Selector.Name)
}

func TestParseMatrixSelector(t *testing.T) {
	q, err := Parse("mat(cell, gene, counts)")
	require.NoError(t, err)
	require.Equal(t, SelectMatrix, q.Selector.Kind)
	require.Equal(t, "cell", q.Selector.Rows)
	require.Equal(t, "gene", q.Selector.Cols)
	require.Equal(t, "counts", q.Selector.Name)
}

func TestParsePipeStage(t *testing.T) {
	q, err := Parse("vec(cell, signed) | Abs")
	require.NoError(t, err)
	require.Len(t, q.Stages, 1)
	op, ok := q.Stages[0].(OpStage)
	require.True(t, ok)
	require.Equal(t, "Abs", op.Op)
	require.Nil(t, op.Params)
}

func TestParsePipeStageWithParams(t *testing.T) {
	q, err := Parse("vec(cell, signed) | Clamp(min=0, max=1.5)")
	require.NoError(t, err)
	op := q.Stages[0].(OpStage)
	require.Equal(t, "Clamp", op.Op)
	require.Equal(t, 0.0, op.Params["min"])
	require.Equal(t, 1.5, op.Params["max"])
}

func TestParseIndexProjection(t *testing.T) {
	q, err := Parse("vec(cell, signed)[A]")
	require.NoError(t, err)
	idx := q.Stages[0].(IndexStage)
	require.Equal(t, []string{"A"}, idx.Entries)
}

func TestParseIndexSlice(t *testing.T) {
	q, err := Parse("vec(cell, signed)[A, B, C]")
	require.NoError(t, err)
	idx := q.Stages[0].(IndexStage)
	require.Equal(t, []string{"A", "B", "C"}, idx.Entries)
}

func TestParseIndexMask(t *testing.T) {
	q, err := Parse("vec(cell, signed)[mask(keep)]")
	require.NoError(t, err)
	idx := q.Stages[0].(IndexStage)
	require.Equal(t, "keep", idx.MaskVector)
}

func TestParseChainedStages(t *testing.T) {
	q, err := Parse("vec(cell, signed)[mask(keep)] | Abs | Sum")
	require.NoError(t, err)
	require.Len(t, q.Stages, 3)
}

func TestParseRejectsUnknownSelector(t *testing.T) {
	_, err := Parse("tensor(cell, gene, counts)")
	require.Error(t, err)
}

func TestParseRejectsTrailingInput(t *testing.T) {
	_, err := Parse("vec(cell, signed) extra")
	require.Error(t, err)
}

func TestParseRejectsMalformedSelector(t *testing.T) {
	_, err := Parse("vec(cell signed)")
	require.Error(t, err)
}
