package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
)

// ReadOnly wraps a Format and statically forbids every mutating
// operation, regardless of whether the wrapped backend is itself a
// writer (spec.md §4.5/§3 invariant 6, §9's "newtype forwarding the
// non-mutating half of Format" design note). ReadOnly is itself a
// Format, so it composes uniformly with Chain and View.
type ReadOnly struct {
	source Format
}

// NewReadOnly wraps source as a read-only dataset.
func NewReadOnly(source Format) *ReadOnly {
	return &ReadOnly{source: source}
}

func (r *ReadOnly) forbidden(name string) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot %s: the daf data: %s is read-only", name, r.source.Name()))
}

func (r *ReadOnly) ID() string       { return r.source.ID() }
func (r *ReadOnly) Name() string     { return r.source.Name() }
func (r *ReadOnly) Lock() *Lock      { return r.source.Lock() }
func (r *ReadOnly) IsWriter() bool   { return false }

func (r *ReadOnly) DescriptionHeader() string { return r.source.DescriptionHeader() }
func (r *ReadOnly) DescriptionFooter() string { return r.source.DescriptionFooter() }

func (r *ReadOnly) VersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	return r.source.VersionCounter(ctx, key)
}

func (r *ReadOnly) IncrementVersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	return 0, r.forbidden("increment a version counter")
}

func (r *ReadOnly) HasScalar(ctx context.Context, name string) (bool, error) {
	return r.source.HasScalar(ctx, name)
}

func (r *ReadOnly) GetScalar(ctx context.Context, name string) (Scalar, error) {
	return r.source.GetScalar(ctx, name)
}

func (r *ReadOnly) SetScalar(ctx context.Context, name string, value Scalar) error {
	return r.forbidden("set a scalar")
}

func (r *ReadOnly) DeleteScalar(ctx context.Context, name string, forSet bool) error {
	return r.forbidden("delete a scalar")
}

func (r *ReadOnly) ScalarNames(ctx context.Context) ([]string, error) {
	return r.source.ScalarNames(ctx)
}

func (r *ReadOnly) HasAxis(ctx context.Context, axis string, forChange bool) (bool, error) {
	if forChange {
		return false, r.forbidden("change an axis")
	}
	return r.source.HasAxis(ctx, axis, false)
}

func (r *ReadOnly) AddAxis(ctx context.Context, axis string, entries []string) error {
	return r.forbidden("add an axis")
}

func (r *ReadOnly) DeleteAxis(ctx context.Context, axis string) error {
	return r.forbidden("delete an axis")
}

func (r *ReadOnly) AxisLength(ctx context.Context, axis string) (int, error) {
	return r.source.AxisLength(ctx, axis)
}

func (r *ReadOnly) AxisEntries(ctx context.Context, axis string) ([]string, error) {
	return r.source.AxisEntries(ctx, axis)
}

func (r *ReadOnly) AxisNames(ctx context.Context) ([]string, error) {
	return r.source.AxisNames(ctx)
}

func (r *ReadOnly) HasVector(ctx context.Context, axis, name string) (bool, error) {
	return r.source.HasVector(ctx, axis, name)
}

func (r *ReadOnly) GetVector(ctx context.Context, axis, name string) (Vector, error) {
	return r.source.GetVector(ctx, axis, name)
}

func (r *ReadOnly) SetVector(ctx context.Context, axis, name string, value Vector) error {
	return r.forbidden("set a vector")
}

func (r *ReadOnly) DeleteVector(ctx context.Context, axis, name string, forSet bool) error {
	return r.forbidden("delete a vector")
}

func (r *ReadOnly) VectorNames(ctx context.Context, axis string) ([]string, error) {
	return r.source.VectorNames(ctx, axis)
}

func (r *ReadOnly) GetEmptyDenseVector(ctx context.Context, axis, name string, kind ElementKind) (*VectorHandle, error) {
	return nil, r.forbidden("allocate a vector")
}

func (r *ReadOnly) GetEmptySparseVector(ctx context.Context, axis, name string, kind ElementKind, nnz int, indKind ElementKind) (*SparseVectorHandle, error) {
	return nil, r.forbidden("allocate a vector")
}

func (r *ReadOnly) HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error) {
	return r.source.HasMatrix(ctx, rows, cols, name, forRelayout)
}

func (r *ReadOnly) GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error) {
	return r.source.GetMatrix(ctx, rows, cols, name, major)
}

func (r *ReadOnly) SetMatrix(ctx context.Context, rows, cols, name string, value Matrix) error {
	return r.forbidden("set a matrix")
}

func (r *ReadOnly) DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error {
	return r.forbidden("delete a matrix")
}

func (r *ReadOnly) MatrixNames(ctx context.Context, rows, cols string) ([]string, error) {
	return r.source.MatrixNames(ctx, rows, cols)
}

func (r *ReadOnly) GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis) (*MatrixHandle, error) {
	return nil, r.forbidden("allocate a matrix")
}

func (r *ReadOnly) GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis, nnz int, indKind ElementKind) (*SparseMatrixHandle, error) {
	return nil, r.forbidden("allocate a matrix")
}

func (r *ReadOnly) Relayout(ctx context.Context, rows, cols, name string, from MajorAxis) (Matrix, error) {
	return Matrix{}, r.forbidden("relayout a matrix")
}
