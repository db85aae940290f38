package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
)

// Facade is the thin readers/writers layer (spec.md §4.4/C4) validating
// inputs and formatting dataset-name-qualified errors before delegating
// to a Format backend. The façade never stores anything itself; it is
// safe to wrap any Format, including a Chain or a View.
type Facade struct {
	Format
}

// NewFacade wraps a backend with input validation.
func NewFacade(f Format) *Facade {
	return &Facade{Format: f}
}

// SetScalar stores value under name, rejecting an existing scalar unless
// overwrite is true (spec.md §4.4 "set-over-existing unless overwrite").
func (fa *Facade) SetScalar(ctx context.Context, name string, value Scalar, overwrite bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		has, err := fa.Format.HasScalar(ctx, name)
		if err != nil {
			return err
		}
		if has {
			if !overwrite {
				return errors.New(errors.AlreadyExists, fmt.Sprintf("existing scalar: %s\nin the daf data: %s", name, fa.Name()))
			}
			if err := fa.Format.DeleteScalar(ctx, name, true); err != nil {
				return err
			}
		}
		return fa.Format.SetScalar(ctx, name, value)
	})
}

// DeleteScalar removes name. If mustExist is false, a missing scalar is
// not an error (spec.md §7 "the must_exist = false variant of delete maps
// NotFound to success").
func (fa *Facade) DeleteScalar(ctx context.Context, name string, mustExist bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		err := fa.Format.DeleteScalar(ctx, name, false)
		if err != nil && !mustExist && errors.Is(err, errors.NotFound) {
			return nil
		}
		return err
	})
}

// AddAxis creates axis with the given entries, rejecting duplicates
// (enforced by the backend) and an already-existing axis.
func (fa *Facade) AddAxis(ctx context.Context, axis string, entries []string) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		has, err := fa.Format.HasAxis(ctx, axis, true)
		if err != nil {
			return err
		}
		if has {
			return errors.New(errors.AlreadyExists, fmt.Sprintf("existing axis: %s\nin the daf data: %s", axis, fa.Name()))
		}
		return fa.Format.AddAxis(ctx, axis, entries)
	})
}

// DeleteAxis removes axis and everything stored on it.
func (fa *Facade) DeleteAxis(ctx context.Context, axis string, mustExist bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		err := fa.Format.DeleteAxis(ctx, axis)
		if err != nil && !mustExist && errors.Is(err, errors.NotFound) {
			return nil
		}
		return err
	})
}

// SetVector validates the vector's length against the axis length before
// delegating to the backend (spec.md §4.4 "value length: N is different
// from axis: A length: M"), and implements set-over-existing/overwrite.
func (fa *Facade) SetVector(ctx context.Context, axis, name string, value Vector, overwrite bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		axisLen, err := fa.Format.AxisLength(ctx, axis)
		if err != nil {
			return err
		}
		n, err := value.Len()
		if err != nil {
			return err
		}
		if n != axisLen {
			return errors.New(errors.ShapeMismatch, fmt.Sprintf("value length: %d is different from axis: %s length: %d", n, axis, axisLen))
		}
		has, err := fa.Format.HasVector(ctx, axis, name)
		if err != nil {
			return err
		}
		if has {
			if !overwrite {
				return errors.New(errors.AlreadyExists, fmt.Sprintf("existing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, fa.Name()))
			}
			if err := fa.Format.DeleteVector(ctx, axis, name, true); err != nil {
				return err
			}
		}
		return fa.Format.SetVector(ctx, axis, name, value)
	})
}

// SetVectorBroadcast fills a vector of length axisLength(axis) with a
// single repeated scalar value (spec.md §4.3 "set(value|scalar-broadcast)").
func (fa *Facade) SetVectorBroadcast(ctx context.Context, axis, name string, kind ElementKind, scalar interface{}, overwrite bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		axisLen, err := fa.Format.AxisLength(ctx, axis)
		if err != nil {
			return err
		}
		values, err := broadcastSlice(kind, scalar, axisLen)
		if err != nil {
			return err
		}
		return fa.SetVector(ctx, axis, name, Vector{Kind: kind, Values: values}, overwrite)
	})
}

// DeleteVector removes a vector.
func (fa *Facade) DeleteVector(ctx context.Context, axis, name string, mustExist bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		err := fa.Format.DeleteVector(ctx, axis, name, false)
		if err != nil && !mustExist && errors.Is(err, errors.NotFound) {
			return nil
		}
		return err
	})
}

// SetMatrix validates the matrix shape against the rows/cols axis
// lengths, then stores it under whatever layout the caller's value
// carries (spec.md §4.4 "the resulting stored layout is taken from the
// caller's value").
func (fa *Facade) SetMatrix(ctx context.Context, rows, cols, name string, value Matrix, overwrite bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		rowsLen, err := fa.Format.AxisLength(ctx, rows)
		if err != nil {
			return err
		}
		colsLen, err := fa.Format.AxisLength(ctx, cols)
		if err != nil {
			return err
		}
		if value.Layout.Shape.Rows != rowsLen || value.Layout.Shape.Cols != colsLen {
			return errors.New(errors.ShapeMismatch, fmt.Sprintf(
				"matrix shape: %s is different from the rows: %s length: %d and the columns: %s length: %d",
				value.Layout.Shape, rows, rowsLen, cols, colsLen))
		}
		has, err := fa.Format.HasMatrix(ctx, rows, cols, name, false)
		if err != nil {
			return err
		}
		if has {
			if !overwrite {
				return errors.New(errors.AlreadyExists, fmt.Sprintf("existing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, fa.Name()))
			}
			if err := fa.Format.DeleteMatrix(ctx, rows, cols, name, true); err != nil {
				return err
			}
		}
		return fa.Format.SetMatrix(ctx, rows, cols, name, value)
	})
}

// DeleteMatrix removes a matrix (all of its stored layouts).
func (fa *Facade) DeleteMatrix(ctx context.Context, rows, cols, name string, mustExist bool) error {
	return fa.Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		err := fa.Format.DeleteMatrix(ctx, rows, cols, name, false)
		if err != nil && !mustExist && errors.Is(err, errors.NotFound) {
			return nil
		}
		return err
	})
}

// GetMatrix returns a matrix in the requested major axis. It does not
// relayout: if only the other layout is stored, it returns TypeMismatch
// naming Relayout; if neither is stored, the NotFound error.
func (fa *Facade) GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error) {
	var out Matrix
	err := fa.Lock().WithReadLock(ctx, func(ctx context.Context) error {
		mat, err := fa.Format.GetMatrix(ctx, rows, cols, name, major)
		if err == nil {
			out = mat
			return nil
		}
		if !errors.Is(err, errors.NotFound) {
			return err
		}
		other := ColumnMajor
		if major == ColumnMajor {
			other = RowMajor
		}
		if _, hasErr := fa.Format.GetMatrix(ctx, rows, cols, name, other); hasErr != nil {
			return err
		}
		return errors.New(errors.TypeMismatch, fmt.Sprintf(
			"matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s\nis stored only in the %s layout; call Relayout to materialize %s",
			name, rows, cols, fa.Name(), other, major))
	})
	return out, err
}
