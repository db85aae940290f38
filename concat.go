package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
	"golang.org/x/sync/errgroup"
)

// Concat builds dst by concatenating parts along axis: axis's entries are
// appended in part order, vectors attached to axis are appended
// element-wise, and matrices whose rows or cols is axis are appended along
// that dimension (SPEC_FULL.md §4.8 "Concat"). Every other axis shared by
// the parts must already be identical across them, reusing the chain
// engine's consistency check (spec.md §8 invariant 6).
func Concat(ctx context.Context, dst Format, axis string, parts []Format) error {
	if len(parts) == 0 {
		return errors.New(errors.InvalidChain, "cannot concat: no parts given")
	}

	if err := checkAxisConsistency(ctx, parts, map[string]bool{axis: true}); err != nil {
		return err
	}

	dstFa := NewFacade(dst)

	otherAxes, err := unionAxisNames(ctx, parts)
	if err != nil {
		return err
	}
	delete(otherAxes, axis)

	for other := range otherAxes {
		has, err := dst.HasAxis(ctx, other, true)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		entries, err := firstAxisEntries(ctx, parts, other)
		if err != nil {
			return err
		}
		if err := dstFa.AddAxis(ctx, other, entries); err != nil {
			return err
		}
	}

	growingEntries, err := concatAxisEntries(ctx, parts, axis)
	if err != nil {
		return err
	}
	has, err := dst.HasAxis(ctx, axis, true)
	if err != nil {
		return err
	}
	if has {
		return errors.New(errors.AlreadyExists, fmt.Sprintf("existing axis: %s\nin the daf data: %s\nconcat always creates the growing axis fresh", axis, dst.Name()))
	}
	if err := dstFa.AddAxis(ctx, axis, growingEntries); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	growingVectorNames, err := unionVectorNames(ctx, parts, axis)
	if err != nil {
		return err
	}
	for name := range growingVectorNames {
		name := name
		g.Go(func() error { return concatVector(gctx, dstFa, parts, axis, name) })
	}

	for other := range otherAxes {
		other := other
		names, err := firstVectorNames(ctx, parts, other)
		if err != nil {
			return err
		}
		for _, name := range names {
			other, name := other, name
			g.Go(func() error { return copyFirstVector(gctx, dstFa, parts, other, name) })
		}
	}

	if err := concatMatrices(gctx, g, dstFa, parts, axis, otherAxes); err != nil {
		return err
	}

	return g.Wait()
}

func unionAxisNames(ctx context.Context, parts []Format) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, p := range parts {
		names, err := p.AxisNames(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			out[n] = true
		}
	}
	return out, nil
}

func firstAxisEntries(ctx context.Context, parts []Format, axis string) ([]string, error) {
	for _, p := range parts {
		has, err := p.HasAxis(ctx, axis, false)
		if err != nil {
			return nil, err
		}
		if has {
			return p.AxisEntries(ctx, axis)
		}
	}
	return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin any concat part", axis))
}

// concatAxisEntries appends axis's entries from every part in order,
// rejecting an entry repeated across parts (SPEC_FULL.md §4.8 "duplicate
// entries across parts are an error").
func concatAxisEntries(ctx context.Context, parts []Format, axis string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range parts {
		entries, err := p.AxisEntries(ctx, axis)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if seen[e] {
				return nil, errors.New(errors.AlreadyExists, fmt.Sprintf("duplicate entry: %s for the growing axis: %s", e, axis))
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out, nil
}

func unionVectorNames(ctx context.Context, parts []Format, axis string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, p := range parts {
		names, err := p.VectorNames(ctx, axis)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			out[n] = true
		}
	}
	return out, nil
}

func firstVectorNames(ctx context.Context, parts []Format, axis string) ([]string, error) {
	for _, p := range parts {
		has, err := p.HasAxis(ctx, axis, false)
		if err != nil {
			return nil, err
		}
		if !has {
			continue
		}
		return p.VectorNames(ctx, axis)
	}
	return nil, nil
}

// concatVector appends name's values across every part that carries axis,
// in part order, and writes the result into dst. Every part contributing
// entries to the growing axis must carry the vector.
func concatVector(ctx context.Context, dstFa *Facade, parts []Format, axis, name string) error {
	var kind ElementKind
	var values interface{}
	for i, p := range parts {
		fa := NewFacade(p)
		v, err := fa.GetVector(ctx, axis, name)
		if err != nil {
			return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the growing axis: %s\nin concat part: %s", name, axis, p.Name()))
		}
		if i == 0 {
			kind, values = v.Kind, v.Values
			continue
		}
		values = appendSlices(values, v.Values)
	}
	return dstFa.SetVector(ctx, axis, name, Vector{Kind: kind, Values: values}, false)
}

func copyFirstVector(ctx context.Context, dstFa *Facade, parts []Format, axis, name string) error {
	for _, p := range parts {
		has, err := p.HasVector(ctx, axis, name)
		if err != nil {
			return err
		}
		if !has {
			continue
		}
		fa := NewFacade(p)
		v, err := fa.GetVector(ctx, axis, name)
		if err != nil {
			return err
		}
		return dstFa.SetVector(ctx, axis, name, v, false)
	}
	return nil
}

// concatMatrices handles every matrix whose rows or cols is the growing
// axis by appending along that dimension, and copies every other matrix
// from whichever part holds it first. Dense matrices growing along rows
// must be stored RowMajor, and those growing along cols must be stored
// ColumnMajor, since relayout transposes logical shape rather than just
// re-ordering storage (types.go's MatrixLayout.Transposed) - a part
// stored the other way must be relaid out by the caller before concat.
// Sparse matrices are not supported as growing-axis matrices.
func concatMatrices(ctx context.Context, g *errgroup.Group, dstFa *Facade, parts []Format, axis string, otherAxes map[string]bool) error {
	seenPairs := make(map[[2]string]bool)
	for other := range otherAxes {
		for _, rows := range []string{axis, other} {
			cols := other
			if rows == other {
				cols = axis
			}
			pair := [2]string{rows, cols}
			if seenPairs[pair] {
				continue
			}
			seenPairs[pair] = true
			rows, cols := rows, cols
			names, err := unionMatrixNames(ctx, parts, rows, cols)
			if err != nil {
				return err
			}
			for name := range names {
				name := name
				if rows == axis {
					g.Go(func() error { return concatMatrixAlongRows(ctx, dstFa, parts, rows, cols, name) })
				} else {
					g.Go(func() error { return concatMatrixAlongCols(ctx, dstFa, parts, rows, cols, name) })
				}
			}
		}
	}

	// Matrices whose rows and cols are both non-growing axes don't grow;
	// copy from whichever part holds them first.
	for rows := range otherAxes {
		for cols := range otherAxes {
			rows, cols := rows, cols
			pair := [2]string{rows, cols}
			if seenPairs[pair] {
				continue
			}
			seenPairs[pair] = true
			names, err := unionMatrixNames(ctx, parts, rows, cols)
			if err != nil {
				return err
			}
			for name := range names {
				name := name
				g.Go(func() error { return copyFirstMatrix(ctx, dstFa, parts, rows, cols, name) })
			}
		}
	}
	return nil
}

func copyFirstMatrix(ctx context.Context, dstFa *Facade, parts []Format, rows, cols, name string) error {
	for _, p := range parts {
		has, err := p.HasMatrix(ctx, rows, cols, name, false)
		if err != nil {
			return err
		}
		if !has {
			continue
		}
		fa := NewFacade(p)
		mat, err := fa.GetMatrix(ctx, rows, cols, name, RowMajor)
		if err != nil {
			mat, err = fa.GetMatrix(ctx, rows, cols, name, ColumnMajor)
		}
		if err != nil {
			return err
		}
		return dstFa.SetMatrix(ctx, rows, cols, name, mat, false)
	}
	return nil
}

func unionMatrixNames(ctx context.Context, parts []Format, rows, cols string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, p := range parts {
		hasRows, err := p.HasAxis(ctx, rows, false)
		if err != nil {
			return nil, err
		}
		hasCols, err := p.HasAxis(ctx, cols, false)
		if err != nil {
			return nil, err
		}
		if !hasRows || !hasCols {
			continue
		}
		names, err := p.MatrixNames(ctx, rows, cols)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			out[n] = true
		}
	}
	return out, nil
}

func concatMatrixAlongRows(ctx context.Context, dstFa *Facade, parts []Format, rows, cols, name string) error {
	var layout MatrixLayout
	var dense interface{}
	first := true
	for _, p := range parts {
		fa := NewFacade(p)
		mat, err := fa.GetMatrix(ctx, rows, cols, name, RowMajor)
		if err != nil {
			return errors.New(errors.TypeMismatch, fmt.Sprintf(
				"matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s\nmust be stored row_major to grow along the rows", name, rows, cols, p.Name()))
		}
		if mat.Layout.Storage == Sparse {
			return errors.New(errors.TypeMismatch, fmt.Sprintf("concat does not support the sparse matrix: %s growing along the rows", name))
		}
		if first {
			layout, dense, first = mat.Layout, mat.Dense, false
			continue
		}
		dense = appendSlices(dense, mat.Dense)
		layout.Shape.Rows += mat.Layout.Shape.Rows
	}
	return dstFa.SetMatrix(ctx, rows, cols, name, Matrix{Layout: layout, Dense: dense}, false)
}

func concatMatrixAlongCols(ctx context.Context, dstFa *Facade, parts []Format, rows, cols, name string) error {
	var layout MatrixLayout
	var blocks []interface{}
	rowsLen := 0
	for _, p := range parts {
		fa := NewFacade(p)
		mat, err := fa.GetMatrix(ctx, rows, cols, name, ColumnMajor)
		if err != nil {
			return errors.New(errors.TypeMismatch, fmt.Sprintf(
				"matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s\nmust be stored column_major to grow along the columns", name, rows, cols, p.Name()))
		}
		if mat.Layout.Storage == Sparse {
			return errors.New(errors.TypeMismatch, fmt.Sprintf("concat does not support the sparse matrix: %s growing along the columns", name))
		}
		if len(blocks) == 0 {
			layout, rowsLen = mat.Layout, mat.Layout.Shape.Rows
			blocks = append(blocks, mat.Dense)
			continue
		}
		blocks = append(blocks, mat.Dense)
		layout.Shape.Cols += mat.Layout.Shape.Cols
	}
	dense := blocks[0]
	for _, b := range blocks[1:] {
		dense = appendSlices(dense, b)
	}
	layout.Shape.Rows = rowsLen
	return dstFa.SetMatrix(ctx, rows, cols, name, Matrix{Layout: layout, Dense: dense}, false)
}
