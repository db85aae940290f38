package boltstore

import (
	"reflect"

	"github.com/scidaf/daf"
)

// transposeMatrix builds relayout(mat), mirroring daf's own (unexported)
// memory.go transposeMatrix: a new stored matrix with rows and columns
// swapped, satisfying relayout(M)[j,i] == M[i,j] (spec.md §8 invariant 9).
// Kept as an independent copy since the core's helper isn't exported and
// a disk backend needs the same transpose regardless of what the
// in-memory backend uses internally.
func transposeMatrix(mat daf.Matrix) daf.Matrix {
	newLayout := mat.Layout.Transposed()
	oldRows, oldCols := mat.Layout.Shape.Rows, mat.Layout.Shape.Cols
	newRows, newCols := oldCols, oldRows

	if mat.Layout.Storage == daf.Dense {
		t, _ := goType(mat.Layout.Kind)
		newBuf := reflect.MakeSlice(reflect.SliceOf(t), oldRows*oldCols, oldRows*oldCols)
		srcV := reflect.ValueOf(mat.Dense)
		for i := 0; i < oldRows; i++ {
			for j := 0; j < oldCols; j++ {
				var srcIdx int
				if mat.Layout.Major == daf.RowMajor {
					srcIdx = i*oldCols + j
				} else {
					srcIdx = j*oldRows + i
				}
				var dstIdx int
				if newLayout.Major == daf.RowMajor {
					dstIdx = j*newCols + i
				} else {
					dstIdx = i*newRows + j
				}
				newBuf.Index(dstIdx).Set(srcV.Index(srcIdx))
			}
		}
		return daf.Matrix{Layout: newLayout, Dense: newBuf.Interface()}
	}

	type coord struct {
		r, c int
		v    reflect.Value
	}
	var coords []coord
	srcV := reflect.ValueOf(mat.Sparse.Values)
	oldMajorDim := oldRows
	if mat.Layout.Major == daf.ColumnMajor {
		oldMajorDim = oldCols
	}
	for major := 0; major < oldMajorDim; major++ {
		for p := mat.Sparse.Indptr[major]; p < mat.Sparse.Indptr[major+1]; p++ {
			minor := mat.Sparse.Indices[p]
			if mat.Layout.Major == daf.RowMajor {
				coords = append(coords, coord{r: major, c: minor, v: srcV.Index(p)})
			} else {
				coords = append(coords, coord{r: minor, c: major, v: srcV.Index(p)})
			}
		}
	}
	for i := range coords {
		coords[i].r, coords[i].c = coords[i].c, coords[i].r
	}
	newMajorDim := newRows
	if newLayout.Major == daf.ColumnMajor {
		newMajorDim = newCols
	}
	buckets := make([][]coord, newMajorDim)
	for _, co := range coords {
		key := co.r
		if newLayout.Major == daf.ColumnMajor {
			key = co.c
		}
		buckets[key] = append(buckets[key], co)
	}
	indptr := make([]int, newMajorDim+1)
	var indices []int
	t, _ := goType(mat.Layout.Kind)
	valsSlice := reflect.MakeSlice(reflect.SliceOf(t), len(coords), len(coords))
	pos := 0
	for major := 0; major < newMajorDim; major++ {
		indptr[major] = pos
		for _, co := range buckets[major] {
			minor := co.c
			if newLayout.Major == daf.ColumnMajor {
				minor = co.r
			}
			indices = append(indices, minor)
			valsSlice.Index(pos).Set(co.v)
			pos++
		}
	}
	indptr[newMajorDim] = pos
	newLayout.NNZ = len(coords)
	return daf.Matrix{Layout: newLayout, Sparse: &daf.SparseMatrix{Indices: indices, Indptr: indptr, Values: valsSlice.Interface()}}
}
