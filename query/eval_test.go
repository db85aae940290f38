package query

import (
	"context"
	"testing"

	"github.com/scidaf/daf"
	"github.com/stretchr/testify/require"
)

func newTestDataset(t *testing.T) *daf.Memory {
	t.Helper()
	ctx := context.Background()
	m := daf.NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B", "C"}))
	require.NoError(t, m.SetVector(ctx, "cell", "signed", daf.Vector{Kind: daf.KindInt64, Values: []int64{-1, 2, -3}}))
	require.NoError(t, m.SetScalar(ctx, "version", daf.Scalar{Kind: daf.KindString, Value: "1.0"}))
	return m
}

func TestEvaluateEltwiseAbs(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	res, err := Evaluate(ctx, m, "vec(cell, signed) | Abs")
	require.NoError(t, err)
	require.Equal(t, ResultVector, res.Kind)
	require.Equal(t, []int64{1, 2, 3}, res.Vector)
}

func TestEvaluateScalarSelector(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	res, err := Evaluate(ctx, m, "scalar(version)")
	require.NoError(t, err)
	require.Equal(t, ResultScalar, res.Kind)
	require.Equal(t, "1.0", res.Scalar)
}

func TestEvaluateProjectionByEntryName(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	res, err := Evaluate(ctx, m, "vec(cell, signed)[B]")
	require.NoError(t, err)
	require.Equal(t, ResultScalar, res.Kind)
	require.Equal(t, int64(2), res.Scalar)
}

func TestEvaluateSliceByEntryNames(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	res, err := Evaluate(ctx, m, "vec(cell, signed)[A, C]")
	require.NoError(t, err)
	require.Equal(t, ResultVector, res.Kind)
	require.Equal(t, []int64{-1, -3}, res.Vector)
}

func TestEvaluateMaskSlice(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)
	require.NoError(t, m.SetVector(context.Background(), "cell", "keep", daf.Vector{Kind: daf.KindBool, Values: []bool{true, false, true}}))

	res, err := Evaluate(ctx, m, "vec(cell, signed)[mask(keep)]")
	require.NoError(t, err)
	require.Equal(t, []int64{-1, -3}, res.Vector)
}

func TestEvaluateReductionSum(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	res, err := Evaluate(ctx, m, "vec(cell, signed) | Abs | Sum")
	require.NoError(t, err)
	require.Equal(t, ResultScalar, res.Kind)
	require.Equal(t, float64(6), res.Scalar)
}

func TestEvaluateOpChainedAfterIntegerVectorSum(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	// signed = [-1, 2, -3] sums to -2; Abs must not panic trying to
	// type-assert the int64 element kind against a float64 sum.
	res, err := Evaluate(ctx, m, "vec(cell, signed) | Sum | Abs")
	require.NoError(t, err)
	require.Equal(t, ResultScalar, res.Kind)
	require.Equal(t, float64(2), res.Scalar)
}

func TestEvaluateOpChainedAfterIntegerMatrixSum(t *testing.T) {
	ctx := context.Background()
	m := daf.NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"x", "y", "z"}))
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "counts", daf.Matrix{
		Layout: daf.MatrixLayout{Kind: daf.KindInt32, Shape: daf.Shape{Rows: 2, Cols: 3}, Major: daf.RowMajor, Storage: daf.Dense},
		Dense:  []int32{-1, -2, -3, -4, -5, -6},
	}))

	// column sums are [-5, -7, -9]; Abs must not panic type-asserting the
	// int32 element kind against the []float64 sums.
	res, err := EvaluateWith(ctx, m, DefaultRegistry, "mat(cell, gene, counts) | Sum | Abs")
	require.NoError(t, err)
	require.Equal(t, ResultVector, res.Kind)
	require.Equal(t, []float64{5, 7, 9}, res.Vector)
}

func TestEvaluateMeanOverMatrix(t *testing.T) {
	ctx := context.Background()
	m := daf.NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"x", "y", "z"}))
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "counts", daf.Matrix{
		Layout: daf.MatrixLayout{Kind: daf.KindFloat64, Shape: daf.Shape{Rows: 2, Cols: 3}, Major: daf.RowMajor, Storage: daf.Dense},
		Dense:  []float64{1, 2, 3, 4, 5, 6},
	}))

	res, err := EvaluateWith(ctx, m, DefaultRegistry, "mat(cell, gene, counts) | Mean")
	require.NoError(t, err)
	require.Equal(t, ResultVector, res.Kind)
	require.Equal(t, []float64{2.5, 3.5, 4.5}, res.Vector)
}

func TestEvaluateAbsOverMatrix(t *testing.T) {
	ctx := context.Background()
	m := daf.NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"x", "y"}))
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "signed", daf.Matrix{
		Layout: daf.MatrixLayout{Kind: daf.KindInt64, Shape: daf.Shape{Rows: 2, Cols: 2}, Major: daf.RowMajor, Storage: daf.Dense},
		Dense:  []int64{-1, 2, 3, -4},
	}))

	res, err := EvaluateWith(ctx, m, DefaultRegistry, "mat(cell, gene, signed) | Abs")
	require.NoError(t, err)
	require.Equal(t, ResultMatrix, res.Kind)
	require.Equal(t, []int64{1, 2, 3, 4}, res.Matrix.Dense)
}

func TestEvaluateUnknownOperation(t *testing.T) {
	ctx := context.Background()
	m := newTestDataset(t)

	_, err := Evaluate(ctx, m, "vec(cell, signed) | DoesNotExist")
	require.Error(t, err)
}

func TestEvaluateMatrixReduction(t *testing.T) {
	ctx := context.Background()
	m := daf.NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"x", "y", "z"}))
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "counts", daf.Matrix{
		Layout: daf.MatrixLayout{Kind: daf.KindFloat64, Shape: daf.Shape{Rows: 2, Cols: 3}, Major: daf.RowMajor, Storage: daf.Dense},
		Dense:  []float64{1, 2, 3, 4, 5, 6},
	}))

	res, err := EvaluateWith(ctx, m, DefaultRegistry, "mat(cell, gene, counts) | Sum")
	require.NoError(t, err)
	require.Equal(t, ResultVector, res.Kind)
	require.Equal(t, []float64{5, 7, 9}, res.Vector)
}
