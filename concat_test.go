package daf

import (
	"context"
	"testing"

	"github.com/scidaf/daf/errors"
	"github.com/stretchr/testify/require"
)

func buildConcatPart(t *testing.T, name string, cells []string, ages []int64, gene []string, umis []float64) *Memory {
	ctx := context.Background()
	m := NewMemory(name)
	require.NoError(t, m.AddAxis(ctx, "cell", cells))
	require.NoError(t, m.AddAxis(ctx, "gene", gene))
	require.NoError(t, m.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: ages}))
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "UMIs", Matrix{
		Layout: MatrixLayout{Kind: KindFloat64, Shape: Shape{Rows: len(cells), Cols: len(gene)}, Major: RowMajor, Storage: Dense},
		Dense:  umis,
	}))
	return m
}

func TestConcatAppendsEntriesVectorsAndMatrices(t *testing.T) {
	ctx := context.Background()
	gene := []string{"g0", "g1"}
	partA := buildConcatPart(t, "A", []string{"c0", "c1"}, []int64{1, 2}, gene, []float64{1, 2, 3, 4})
	partB := buildConcatPart(t, "B", []string{"c2"}, []int64{3}, gene, []float64{5, 6})

	dst := NewMemory("combined")
	require.NoError(t, Concat(ctx, dst, "cell", []Format{partA, partB}))

	entries, err := dst.AxisEntries(ctx, "cell")
	require.NoError(t, err)
	require.Equal(t, []string{"c0", "c1", "c2"}, entries)

	v, err := dst.GetVector(ctx, "cell", "age")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, v.Values)

	mat, err := dst.GetMatrix(ctx, "cell", "gene", "UMIs", RowMajor)
	require.NoError(t, err)
	require.Equal(t, Shape{Rows: 3, Cols: 2}, mat.Layout.Shape)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, mat.Dense)
}

func TestConcatRejectsDuplicateGrowingEntries(t *testing.T) {
	ctx := context.Background()
	gene := []string{"g0"}
	partA := buildConcatPart(t, "A", []string{"c0"}, []int64{1}, gene, []float64{1})
	partB := buildConcatPart(t, "B", []string{"c0"}, []int64{2}, gene, []float64{2})

	dst := NewMemory("combined")
	err := Concat(ctx, dst, "cell", []Format{partA, partB})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.AlreadyExists))
}

func TestConcatRejectsInconsistentSharedAxis(t *testing.T) {
	ctx := context.Background()
	partA := buildConcatPart(t, "A", []string{"c0"}, []int64{1}, []string{"g0", "g1"}, []float64{1, 2})
	partB := buildConcatPart(t, "B", []string{"c1"}, []int64{2}, []string{"g0", "g2"}, []float64{3, 4})

	dst := NewMemory("combined")
	err := Concat(ctx, dst, "cell", []Format{partA, partB})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.InconsistentAxis))
}

func TestConcatRejectsEmptyParts(t *testing.T) {
	err := Concat(context.Background(), NewMemory("combined"), "cell", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.InvalidChain))
}

func buildConcatColsPart(t *testing.T, name string, cells []string, gene []string, umis []float64) *Memory {
	ctx := context.Background()
	m := NewMemory(name)
	require.NoError(t, m.AddAxis(ctx, "cell", cells))
	require.NoError(t, m.AddAxis(ctx, "gene", gene))
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "UMIs", Matrix{
		Layout: MatrixLayout{Kind: KindFloat64, Shape: Shape{Rows: len(cells), Cols: len(gene)}, Major: ColumnMajor, Storage: Dense},
		Dense:  umis,
	}))
	return m
}

func TestConcatAppendsMatrixAlongColumns(t *testing.T) {
	ctx := context.Background()
	cells := []string{"c0", "c1"}
	// column-major, so each part's Dense is column-by-column.
	partA := buildConcatColsPart(t, "A", cells, []string{"g0"}, []float64{1, 2})
	partB := buildConcatColsPart(t, "B", cells, []string{"g1", "g2"}, []float64{3, 4, 5, 6})

	dst := NewMemory("combined")
	require.NoError(t, Concat(ctx, dst, "gene", []Format{partA, partB}))

	entries, err := dst.AxisEntries(ctx, "gene")
	require.NoError(t, err)
	require.Equal(t, []string{"g0", "g1", "g2"}, entries)

	mat, err := dst.GetMatrix(ctx, "cell", "gene", "UMIs", ColumnMajor)
	require.NoError(t, err)
	require.Equal(t, Shape{Rows: 2, Cols: 3}, mat.Layout.Shape)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, mat.Dense)
}
