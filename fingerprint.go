package daf

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/zeebo/blake3"
)

// Fingerprint folds a dataset's full content into a BLAKE3 digest (SPEC_FULL.md
// §3.1), hex-encoded. Every name is visited in sorted order (ScalarNames,
// VectorNames and MatrixNames return sorted slices; axis names are sorted
// here, since a backend may list them in creation order), so two
// datasets with byte-identical content produce identical fingerprints
// regardless of the order their artifacts were written in. This is a
// diagnostic aid, not part of the storage contract: it never gates a read
// or write.
func Fingerprint(ctx context.Context, f Format) (string, error) {
	h := blake3.New()

	scalarNames, err := f.ScalarNames(ctx)
	if err != nil {
		return "", err
	}
	for _, name := range scalarNames {
		value, err := f.GetScalar(ctx, name)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "scalar\x00%s\x00%v\x00", name, value.Value)
	}

	axisNames, err := f.AxisNames(ctx)
	if err != nil {
		return "", err
	}
	sort.Strings(axisNames)
	for _, axis := range axisNames {
		entries, err := f.AxisEntries(ctx, axis)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "axis\x00%s\x00%v\x00", axis, entries)

		vectorNames, err := f.VectorNames(ctx, axis)
		if err != nil {
			return "", err
		}
		for _, name := range vectorNames {
			vec, err := f.GetVector(ctx, axis, name)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(h, "vector\x00%s\x00%s\x00%v\x00", axis, name, reflect.ValueOf(vec.Values).Interface())
		}
	}

	for _, rows := range axisNames {
		for _, cols := range axisNames {
			matrixNames, err := f.MatrixNames(ctx, rows, cols)
			if err != nil {
				return "", err
			}
			for _, name := range matrixNames {
				mat, err := f.GetMatrix(ctx, rows, cols, name, RowMajor)
				if err != nil {
					mat, err = f.GetMatrix(ctx, rows, cols, name, ColumnMajor)
				}
				if err != nil {
					return "", err
				}
				if mat.Layout.Storage == Sparse {
					fmt.Fprintf(h, "matrix\x00%s\x00%s\x00%s\x00%s\x00%v\x00%v\x00%v\x00",
						rows, cols, name, mat.Layout, mat.Sparse.Indptr, mat.Sparse.Indices, mat.Sparse.Values)
				} else {
					fmt.Fprintf(h, "matrix\x00%s\x00%s\x00%s\x00%s\x00%v\x00", rows, cols, name, mat.Layout, mat.Dense)
				}
			}
		}
	}

	var buf [32]byte
	if _, err := h.Digest().Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", buf), nil
}
