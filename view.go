package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
	"golang.org/x/exp/slices"
)

// vectorAliasKey and matrixAliasKey identify an aliased vector/matrix by
// its alias-side coordinates.
type vectorAliasKey struct{ axis, name string }
type matrixAliasKey struct{ rows, cols, name string }

// View exposes a renaming of axes and artifacts on top of a reader
// (spec.md §4.6/C7). It is always read-only. Any axis, scalar, vector or
// matrix name not explicitly aliased passes through unchanged to the
// source; an alias pointing at a source name the source doesn't actually
// have surfaces as "missing: <alias>", using the alias rather than the
// source name (spec.md §4.6 "Unknown aliases surface as missing with the
// alias name").
type View struct {
	source Format
	name   string

	axisAlias   map[string]string
	scalarAlias map[string]string
	vectorAlias map[vectorAliasKey]string
	matrixAlias map[matrixAliasKey]string
}

// NewView returns an empty view over source; use the Alias* builders to
// register renamings before use.
func NewView(name string, source Format) *View {
	return &View{
		source:      source,
		name:        name,
		axisAlias:   make(map[string]string),
		scalarAlias: make(map[string]string),
		vectorAlias: make(map[vectorAliasKey]string),
		matrixAlias: make(map[matrixAliasKey]string),
	}
}

// AliasAxis registers alias as another name for the source's axis.
func (v *View) AliasAxis(alias, source string) *View {
	v.axisAlias[alias] = source
	return v
}

// AliasScalar registers alias as another name for the source's scalar.
func (v *View) AliasScalar(alias, source string) *View {
	v.scalarAlias[alias] = source
	return v
}

// AliasVector registers (axisAlias, nameAlias) as another name for the
// source's (axis, name) vector.
func (v *View) AliasVector(axisAlias, nameAlias, axis, name string) *View {
	v.vectorAlias[vectorAliasKey{axis: axisAlias, name: nameAlias}] = name
	if _, ok := v.axisAlias[axisAlias]; !ok {
		v.axisAlias[axisAlias] = axis
	}
	return v
}

// AliasMatrix registers (rowsAlias, colsAlias, nameAlias) as another name
// for the source's (rows, cols, name) matrix.
func (v *View) AliasMatrix(rowsAlias, colsAlias, nameAlias, rows, cols, name string) *View {
	v.matrixAlias[matrixAliasKey{rows: rowsAlias, cols: colsAlias, name: nameAlias}] = name
	if _, ok := v.axisAlias[rowsAlias]; !ok {
		v.axisAlias[rowsAlias] = rows
	}
	if _, ok := v.axisAlias[colsAlias]; !ok {
		v.axisAlias[colsAlias] = cols
	}
	return v
}

func (v *View) resolveAxis(alias string) string {
	if src, ok := v.axisAlias[alias]; ok {
		return src
	}
	return alias
}

func (v *View) resolveScalar(alias string) string {
	if src, ok := v.scalarAlias[alias]; ok {
		return src
	}
	return alias
}

func (v *View) resolveVector(axisAlias, nameAlias string) string {
	if src, ok := v.vectorAlias[vectorAliasKey{axis: axisAlias, name: nameAlias}]; ok {
		return src
	}
	return nameAlias
}

func (v *View) resolveMatrix(rowsAlias, colsAlias, nameAlias string) string {
	if src, ok := v.matrixAlias[matrixAliasKey{rows: rowsAlias, cols: colsAlias, name: nameAlias}]; ok {
		return src
	}
	return nameAlias
}

func (v *View) missing(kind, alias string) error {
	return errors.New(errors.NotFound, fmt.Sprintf("missing %s: %s\nin the daf data: %s", kind, alias, v.name))
}

func (v *View) ID() string       { return v.source.ID() }
func (v *View) Name() string     { return v.name }
func (v *View) Lock() *Lock      { return v.source.Lock() }
func (v *View) IsWriter() bool   { return false }

func (v *View) DescriptionHeader() string { return v.source.DescriptionHeader() }
func (v *View) DescriptionFooter() string { return v.source.DescriptionFooter() }

func (v *View) VersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	return v.source.VersionCounter(ctx, key)
}

func (v *View) IncrementVersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	return 0, errors.New(errors.LockMisuse, fmt.Sprintf("cannot modify: the daf data: %s is a read-only view", v.name))
}

func (v *View) HasScalar(ctx context.Context, name string) (bool, error) {
	return v.source.HasScalar(ctx, v.resolveScalar(name))
}

func (v *View) GetScalar(ctx context.Context, name string) (Scalar, error) {
	out, err := v.source.GetScalar(ctx, v.resolveScalar(name))
	if errors.Is(err, errors.NotFound) {
		return Scalar{}, v.missing("scalar", name)
	}
	return out, err
}

func (v *View) SetScalar(ctx context.Context, name string, value Scalar) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot set a scalar: the daf data: %s is a read-only view", v.name))
}

func (v *View) DeleteScalar(ctx context.Context, name string, forSet bool) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot delete a scalar: the daf data: %s is a read-only view", v.name))
}

func (v *View) ScalarNames(ctx context.Context) ([]string, error) {
	names, err := v.source.ScalarNames(ctx)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string, len(v.scalarAlias))
	for alias, src := range v.scalarAlias {
		reverse[src] = alias
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if alias, ok := reverse[n]; ok {
			out = append(out, alias)
		} else {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (v *View) HasAxis(ctx context.Context, axis string, forChange bool) (bool, error) {
	if forChange {
		return false, nil
	}
	return v.source.HasAxis(ctx, v.resolveAxis(axis), false)
}

func (v *View) AddAxis(ctx context.Context, axis string, entries []string) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot add an axis: the daf data: %s is a read-only view", v.name))
}

func (v *View) DeleteAxis(ctx context.Context, axis string) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot delete an axis: the daf data: %s is a read-only view", v.name))
}

func (v *View) AxisLength(ctx context.Context, axis string) (int, error) {
	n, err := v.source.AxisLength(ctx, v.resolveAxis(axis))
	if errors.Is(err, errors.NotFound) {
		return 0, v.missing("axis", axis)
	}
	return n, err
}

func (v *View) AxisEntries(ctx context.Context, axis string) ([]string, error) {
	entries, err := v.source.AxisEntries(ctx, v.resolveAxis(axis))
	if errors.Is(err, errors.NotFound) {
		return nil, v.missing("axis", axis)
	}
	return entries, err
}

func (v *View) AxisNames(ctx context.Context) ([]string, error) {
	names, err := v.source.AxisNames(ctx)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string, len(v.axisAlias))
	for alias, src := range v.axisAlias {
		reverse[src] = alias
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if alias, ok := reverse[n]; ok {
			out = append(out, alias)
		} else {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (v *View) HasVector(ctx context.Context, axis, name string) (bool, error) {
	srcAxis := v.resolveAxis(axis)
	return v.source.HasVector(ctx, srcAxis, v.resolveVector(axis, name))
}

func (v *View) GetVector(ctx context.Context, axis, name string) (Vector, error) {
	srcAxis := v.resolveAxis(axis)
	out, err := v.source.GetVector(ctx, srcAxis, v.resolveVector(axis, name))
	if errors.Is(err, errors.NotFound) {
		return Vector{}, v.missing("vector", name)
	}
	return out, err
}

func (v *View) SetVector(ctx context.Context, axis, name string, value Vector) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot set a vector: the daf data: %s is a read-only view", v.name))
}

func (v *View) DeleteVector(ctx context.Context, axis, name string, forSet bool) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot delete a vector: the daf data: %s is a read-only view", v.name))
}

func (v *View) VectorNames(ctx context.Context, axis string) ([]string, error) {
	srcAxis := v.resolveAxis(axis)
	names, err := v.source.VectorNames(ctx, srcAxis)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string)
	for key, src := range v.vectorAlias {
		if key.axis == axis {
			reverse[src] = key.name
		}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if alias, ok := reverse[n]; ok {
			out = append(out, alias)
		} else {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (v *View) GetEmptyDenseVector(ctx context.Context, axis, name string, kind ElementKind) (*VectorHandle, error) {
	return nil, errors.New(errors.LockMisuse, fmt.Sprintf("cannot allocate a vector: the daf data: %s is a read-only view", v.name))
}

func (v *View) GetEmptySparseVector(ctx context.Context, axis, name string, kind ElementKind, nnz int, indKind ElementKind) (*SparseVectorHandle, error) {
	return nil, errors.New(errors.LockMisuse, fmt.Sprintf("cannot allocate a vector: the daf data: %s is a read-only view", v.name))
}

func (v *View) HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error) {
	srcRows, srcCols := v.resolveAxis(rows), v.resolveAxis(cols)
	return v.source.HasMatrix(ctx, srcRows, srcCols, v.resolveMatrix(rows, cols, name), forRelayout)
}

func (v *View) GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error) {
	srcRows, srcCols := v.resolveAxis(rows), v.resolveAxis(cols)
	out, err := v.source.GetMatrix(ctx, srcRows, srcCols, v.resolveMatrix(rows, cols, name), major)
	if errors.Is(err, errors.NotFound) {
		return Matrix{}, v.missing("matrix", name)
	}
	return out, err
}

func (v *View) SetMatrix(ctx context.Context, rows, cols, name string, value Matrix) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot set a matrix: the daf data: %s is a read-only view", v.name))
}

func (v *View) DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error {
	return errors.New(errors.LockMisuse, fmt.Sprintf("cannot delete a matrix: the daf data: %s is a read-only view", v.name))
}

func (v *View) MatrixNames(ctx context.Context, rows, cols string) ([]string, error) {
	srcRows, srcCols := v.resolveAxis(rows), v.resolveAxis(cols)
	names, err := v.source.MatrixNames(ctx, srcRows, srcCols)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string)
	for key, src := range v.matrixAlias {
		if key.rows == rows && key.cols == cols {
			reverse[src] = key.name
		}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if alias, ok := reverse[n]; ok {
			out = append(out, alias)
		} else {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (v *View) GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis) (*MatrixHandle, error) {
	return nil, errors.New(errors.LockMisuse, fmt.Sprintf("cannot allocate a matrix: the daf data: %s is a read-only view", v.name))
}

func (v *View) GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis, nnz int, indKind ElementKind) (*SparseMatrixHandle, error) {
	return nil, errors.New(errors.LockMisuse, fmt.Sprintf("cannot allocate a matrix: the daf data: %s is a read-only view", v.name))
}

func (v *View) Relayout(ctx context.Context, rows, cols, name string, from MajorAxis) (Matrix, error) {
	return Matrix{}, errors.New(errors.LockMisuse, fmt.Sprintf("cannot relayout a matrix: the daf data: %s is a read-only view", v.name))
}
