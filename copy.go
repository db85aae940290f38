package daf

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Copy transfers every axis, scalar, vector, and matrix from src into
// dst, using only the Facade-level operations so it works across any
// pair of Format implementations, including a memory source into a bolt
// destination or vice versa (SPEC_FULL.md §4.8). Axis creation runs
// sequentially since later copies assume all axes already exist; once
// axes are in place, independent vector/matrix copies run concurrently
// via golang.org/x/sync/errgroup.
func Copy(ctx context.Context, dst, src Format, overwrite bool) error {
	dstFa := NewFacade(dst)
	srcFa := NewFacade(src)

	axisNames, err := src.AxisNames(ctx)
	if err != nil {
		return err
	}
	for _, axis := range axisNames {
		entries, err := src.AxisEntries(ctx, axis)
		if err != nil {
			return err
		}
		has, err := dst.HasAxis(ctx, axis, true)
		if err != nil {
			return err
		}
		if !has {
			if err := dstFa.AddAxis(ctx, axis, entries); err != nil {
				return err
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	scalarNames, err := src.ScalarNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range scalarNames {
		name := name
		g.Go(func() error {
			value, err := srcFa.GetScalar(gctx, name)
			if err != nil {
				return err
			}
			return dstFa.SetScalar(gctx, name, value, overwrite)
		})
	}

	for _, axis := range axisNames {
		axis := axis
		vectorNames, err := src.VectorNames(ctx, axis)
		if err != nil {
			return err
		}
		for _, name := range vectorNames {
			name := name
			g.Go(func() error {
				value, err := srcFa.GetVector(gctx, axis, name)
				if err != nil {
					return err
				}
				return dstFa.SetVector(gctx, axis, name, value, overwrite)
			})
		}
	}

	for _, rows := range axisNames {
		rows := rows
		for _, cols := range axisNames {
			cols := cols
			matrixNames, err := src.MatrixNames(ctx, rows, cols)
			if err != nil {
				return err
			}
			for _, name := range matrixNames {
				name := name
				g.Go(func() error {
					value, err := srcFa.GetMatrix(gctx, rows, cols, name, RowMajor)
					if err != nil {
						value, err = srcFa.GetMatrix(gctx, rows, cols, name, ColumnMajor)
					}
					if err != nil {
						return err
					}
					return dstFa.SetMatrix(gctx, rows, cols, name, value, overwrite)
				})
			}
		}
	}

	return g.Wait()
}
