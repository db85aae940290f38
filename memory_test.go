package daf

import (
	"context"
	"testing"

	"github.com/scidaf/daf/errors"
	"github.com/stretchr/testify/require"
)

func TestMemoryScalarRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")

	ok, err := m.HasScalar(ctx, "version")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.SetScalar(ctx, "version", Scalar{Kind: KindString, Value: "1.0"}))

	ok, err = m.HasScalar(ctx, "version")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := m.GetScalar(ctx, "version")
	require.NoError(t, err)
	require.Equal(t, "1.0", got.Value)

	require.NoError(t, m.DeleteScalar(ctx, "version", false))
	_, err = m.GetScalar(ctx, "version")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.NotFound))
	require.Equal(t, "missing scalar: version\nin the daf data: cells", err.Error())
}

func TestMemoryAxisLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")

	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B", "C"}))

	err := m.AddAxis(ctx, "cell", []string{"A"})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.AlreadyExists))

	n, err := m.AxisLength(ctx, "cell")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	entries, err := m.AxisEntries(ctx, "cell")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, entries)

	names, err := m.AxisNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"cell"}, names)

	require.NoError(t, m.DeleteAxis(ctx, "cell"))
	_, err = m.AxisLength(ctx, "cell")
	require.Error(t, err)
}

func TestMemoryVectorLengthMismatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B", "C"}))

	err := m.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: []int64{1, 2}})
	require.NoError(t, err) // the backend itself does not check length; the facade does

	v, err := m.GetVector(ctx, "cell", "age")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, v.Values)
}

func TestMemoryVectorNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))

	_, err := m.GetVector(ctx, "cell", "age")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.NotFound))
	require.Equal(t, "missing vector: age\nfor the axis: cell\nin the daf data: cells", err.Error())
}

func TestMemoryEmptyDenseVectorSeal(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B", "C"}))

	handle, err := m.GetEmptyDenseVector(ctx, "cell", "age", KindInt64)
	require.NoError(t, err)
	buf := handle.Values.([]int64)
	require.Len(t, buf, 3)
	buf[0], buf[1], buf[2] = 10, 20, 30

	require.NoError(t, handle.Seal())
	require.Error(t, handle.Seal()) // double seal is a LockMisuse

	v, err := m.GetVector(ctx, "cell", "age")
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20, 30}, v.Values)
}

func TestMemoryEmptySparseVectorSeal(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B", "C", "D"}))

	handle, err := m.GetEmptySparseVector(ctx, "cell", "score", KindFloat64, 4, KindInt32)
	require.NoError(t, err)
	vals := handle.Values.([]float64)
	handle.Indices[0], vals[0] = 0, 1.5
	handle.Indices[1], vals[1] = 2, 2.5

	require.NoError(t, handle.Seal(2))

	v, err := m.GetVector(ctx, "cell", "score")
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, 2.5}, v.Values)
}

func TestMemoryMatrixSetGetAndDense(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"X", "Y", "Z"}))

	layout := MatrixLayout{Kind: KindFloat64, Shape: Shape{Rows: 2, Cols: 3}, Major: RowMajor, Storage: Dense}
	mat := Matrix{Layout: layout, Dense: []float64{1, 2, 3, 4, 5, 6}}
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "UMIs", mat))

	got, err := m.GetMatrix(ctx, "cell", "gene", "UMIs", RowMajor)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got.Dense)

	_, err = m.GetMatrix(ctx, "cell", "gene", "UMIs", ColumnMajor)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.NotFound))
}

func TestMemoryRelayoutPreservesLogicalValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"X", "Y", "Z"}))

	layout := MatrixLayout{Kind: KindFloat64, Shape: Shape{Rows: 2, Cols: 3}, Major: RowMajor, Storage: Dense}
	mat := Matrix{Layout: layout, Dense: []float64{1, 2, 3, 4, 5, 6}}
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "UMIs", mat))

	relaid, err := m.Relayout(ctx, "cell", "gene", "UMIs", RowMajor)
	require.NoError(t, err)
	require.Equal(t, ColumnMajor, relaid.Layout.Major)
	require.Equal(t, Shape{Rows: 3, Cols: 2}, relaid.Layout.Shape)

	// relaid is the transpose of [[1,2,3],[4,5,6]], i.e. [[1,4],[2,5],[3,6]],
	// stored column-major: element (r,c) lives at c*newRows+r.
	newRows := 3
	buf := relaid.Dense.([]float64)
	at := func(r, c int) float64 { return buf[c*newRows+r] }
	require.Equal(t, 1.0, at(0, 0))
	require.Equal(t, 4.0, at(0, 1))
	require.Equal(t, 2.0, at(1, 0))
	require.Equal(t, 5.0, at(1, 1))
	require.Equal(t, 3.0, at(2, 0))
	require.Equal(t, 6.0, at(2, 1))
}

func TestMemoryDeleteAxisCascadesMatrices(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	require.NoError(t, m.AddAxis(ctx, "cell", []string{"A", "B"}))
	require.NoError(t, m.AddAxis(ctx, "gene", []string{"X", "Y"}))
	require.NoError(t, m.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: []int64{1, 2}}))

	layout := MatrixLayout{Kind: KindFloat64, Shape: Shape{Rows: 2, Cols: 2}, Major: RowMajor, Storage: Dense}
	require.NoError(t, m.SetMatrix(ctx, "cell", "gene", "UMIs", Matrix{Layout: layout, Dense: []float64{1, 2, 3, 4}}))

	require.NoError(t, m.DeleteAxis(ctx, "cell"))

	has, err := m.HasVector(ctx, "cell", "age")
	require.NoError(t, err)
	require.False(t, has)

	has, err = m.HasMatrix(ctx, "cell", "gene", "UMIs", false)
	require.NoError(t, err)
	require.False(t, has)
}

func TestMemoryVersionCounterIncrementsOnWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("cells")
	key := ScalarNamesKey()

	v1, err := m.VersionCounter(ctx, key)
	require.NoError(t, err)

	require.NoError(t, m.SetScalar(ctx, "version", Scalar{Kind: KindString, Value: "1.0"}))

	v2, err := m.VersionCounter(ctx, key)
	require.NoError(t, err)
	require.Greater(t, v2, v1)
}
