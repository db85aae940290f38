package daf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errCacheTestCompute = errors.New("compute failed")

func TestDataKeyStringForms(t *testing.T) {
	require.Equal(t, "scalar-names", ScalarNamesKey().String())
	require.Equal(t, "axis-names", AxisNamesKey().String())
	require.Equal(t, "axis-entries(cell)", AxisEntriesKey("cell").String())
	require.Equal(t, "vector(cell,age)", VectorKey("cell", "age").String())
	require.Equal(t, "matrix(cell,gene,counts,row_major)", MatrixKey("cell", "gene", "counts", RowMajor).String())
}

func TestCacheComputesOnceThenReturnsCachedValue(t *testing.T) {
	c := NewCache()
	key := VectorKey("cell", "age")
	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return []int64{1, 2, 3}, nil
	}

	v1, err := c.GetOrCompute(key, 1, compute)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, v1)
	require.Equal(t, 1, calls)

	v2, err := c.GetOrCompute(key, 1, compute)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, v2)
	require.Equal(t, 1, calls, "second call at the same version should not recompute")
}

func TestCacheRecomputesAfterVersionBump(t *testing.T) {
	c := NewCache()
	key := VectorKey("cell", "age")
	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v1, err := c.GetOrCompute(key, 1, compute)
	require.NoError(t, err)
	require.Equal(t, 1, v1)

	v2, err := c.GetOrCompute(key, 2, compute)
	require.NoError(t, err)
	require.Equal(t, 2, v2)
	require.Equal(t, 2, calls)
}

func TestCacheComputeErrorIsNotCached(t *testing.T) {
	c := NewCache()
	key := AxisNamesKey()
	calls := 0

	_, err := c.GetOrCompute(key, 1, func() (interface{}, error) {
		calls++
		return nil, errCacheTestCompute
	})
	require.Error(t, err)
	require.Equal(t, 0, c.Len())

	v, err := c.GetOrCompute(key, 1, func() (interface{}, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 2, calls)
}

func TestCacheInvalidateRemovesEntry(t *testing.T) {
	c := NewCache()
	key := ScalarNamesKey()

	_, err := c.GetOrCompute(key, 1, func() (interface{}, error) { return "v", nil })
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Invalidate(key)
	require.Equal(t, 0, c.Len())
}

func TestCacheDistinctKeysDoNotCollide(t *testing.T) {
	c := NewCache()
	_, err := c.GetOrCompute(VectorKey("cell", "age"), 1, func() (interface{}, error) { return "age-vec", nil })
	require.NoError(t, err)
	_, err = c.GetOrCompute(VectorKey("gene", "age"), 1, func() (interface{}, error) { return "other-axis", nil })
	require.NoError(t, err)
	_, err = c.GetOrCompute(VectorKey("cell", "score"), 1, func() (interface{}, error) { return "other-name", nil })
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
}
