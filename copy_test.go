package daf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopyTransfersScalarsVectorsMatrices(t *testing.T) {
	ctx := context.Background()
	src := NewMemory("src")
	require.NoError(t, src.AddAxis(ctx, "cell", []string{"c0", "c1"}))
	require.NoError(t, src.AddAxis(ctx, "gene", []string{"g0", "g1", "g2"}))
	require.NoError(t, src.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(7)}))
	require.NoError(t, src.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: []int64{1, 2}}))
	require.NoError(t, src.SetMatrix(ctx, "cell", "gene", "UMIs", Matrix{
		Layout: MatrixLayout{Kind: KindFloat64, Shape: Shape{Rows: 2, Cols: 3}, Major: RowMajor, Storage: Dense},
		Dense:  []float64{1, 2, 3, 4, 5, 6},
	}))

	dst := NewMemory("dst")
	require.NoError(t, Copy(ctx, dst, src, false))

	gotScalar, err := dst.GetScalar(ctx, "version")
	require.NoError(t, err)
	require.Equal(t, int64(7), gotScalar.Value)

	gotVec, err := dst.GetVector(ctx, "cell", "age")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, gotVec.Values)

	gotMat, err := dst.GetMatrix(ctx, "cell", "gene", "UMIs", RowMajor)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, gotMat.Dense)
}

func TestCopyRejectsExistingWithoutOverwrite(t *testing.T) {
	ctx := context.Background()
	src := NewMemory("src")
	require.NoError(t, src.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(7)}))

	dst := NewMemory("dst")
	require.NoError(t, dst.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(1)}))

	err := Copy(ctx, dst, src, false)
	require.Error(t, err)

	require.NoError(t, Copy(ctx, dst, src, true))
	got, err := dst.GetScalar(ctx, "version")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Value)
}
