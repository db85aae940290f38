package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
	"golang.org/x/exp/slices"
)

// Adapter is a mutable renaming layer over a writer (SPEC_FULL.md §4.8
// "Adapter"), structurally the writable counterpart of View: the same
// alias-or-pass-through resolution, but every mutating Format method is
// forwarded to the wrapped source instead of being forbidden. It exists to
// bridge a foreign schema's vocabulary onto daf's own - e.g. mapping an
// AnnData-style "obs"/"var" onto daf's "cell"/"gene" axes - without
// copying any data.
type Adapter struct {
	source Format
	name   string

	axisAlias   map[string]string
	scalarAlias map[string]string
	vectorAlias map[vectorAliasKey]string
	matrixAlias map[matrixAliasKey]string
}

// NewAdapter returns an empty adapter over source; use the Alias* builders
// to register renamings before use.
func NewAdapter(name string, source Format) *Adapter {
	return &Adapter{
		source:      source,
		name:        name,
		axisAlias:   make(map[string]string),
		scalarAlias: make(map[string]string),
		vectorAlias: make(map[vectorAliasKey]string),
		matrixAlias: make(map[matrixAliasKey]string),
	}
}

func (a *Adapter) AliasAxis(alias, source string) *Adapter {
	a.axisAlias[alias] = source
	return a
}

func (a *Adapter) AliasScalar(alias, source string) *Adapter {
	a.scalarAlias[alias] = source
	return a
}

func (a *Adapter) AliasVector(axisAlias, nameAlias, axis, name string) *Adapter {
	a.vectorAlias[vectorAliasKey{axis: axisAlias, name: nameAlias}] = name
	if _, ok := a.axisAlias[axisAlias]; !ok {
		a.axisAlias[axisAlias] = axis
	}
	return a
}

func (a *Adapter) AliasMatrix(rowsAlias, colsAlias, nameAlias, rows, cols, name string) *Adapter {
	a.matrixAlias[matrixAliasKey{rows: rowsAlias, cols: colsAlias, name: nameAlias}] = name
	if _, ok := a.axisAlias[rowsAlias]; !ok {
		a.axisAlias[rowsAlias] = rows
	}
	if _, ok := a.axisAlias[colsAlias]; !ok {
		a.axisAlias[colsAlias] = cols
	}
	return a
}

func (a *Adapter) resolveAxis(alias string) string {
	if src, ok := a.axisAlias[alias]; ok {
		return src
	}
	return alias
}

func (a *Adapter) resolveScalar(alias string) string {
	if src, ok := a.scalarAlias[alias]; ok {
		return src
	}
	return alias
}

func (a *Adapter) resolveVector(axisAlias, nameAlias string) string {
	if src, ok := a.vectorAlias[vectorAliasKey{axis: axisAlias, name: nameAlias}]; ok {
		return src
	}
	return nameAlias
}

func (a *Adapter) resolveMatrix(rowsAlias, colsAlias, nameAlias string) string {
	if src, ok := a.matrixAlias[matrixAliasKey{rows: rowsAlias, cols: colsAlias, name: nameAlias}]; ok {
		return src
	}
	return nameAlias
}

func (a *Adapter) missing(kind, alias string) error {
	return errors.New(errors.NotFound, fmt.Sprintf("missing %s: %s\nin the daf data: %s", kind, alias, a.name))
}

// aliasOf reverse-resolves a source name back to its alias, for name
// enumeration, matching what the name would have been aliased from.
func aliasOf(reverse map[string]string, name string) string {
	if alias, ok := reverse[name]; ok {
		return alias
	}
	return name
}

func (a *Adapter) ID() string     { return a.source.ID() }
func (a *Adapter) Name() string   { return a.name }
func (a *Adapter) Lock() *Lock    { return a.source.Lock() }
func (a *Adapter) IsWriter() bool { return a.source.IsWriter() }

func (a *Adapter) DescriptionHeader() string { return a.source.DescriptionHeader() }
func (a *Adapter) DescriptionFooter() string { return a.source.DescriptionFooter() }

func (a *Adapter) VersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	return a.source.VersionCounter(ctx, key)
}

func (a *Adapter) IncrementVersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	return a.source.IncrementVersionCounter(ctx, key)
}

func (a *Adapter) HasScalar(ctx context.Context, name string) (bool, error) {
	return a.source.HasScalar(ctx, a.resolveScalar(name))
}

func (a *Adapter) GetScalar(ctx context.Context, name string) (Scalar, error) {
	out, err := a.source.GetScalar(ctx, a.resolveScalar(name))
	if errors.Is(err, errors.NotFound) {
		return Scalar{}, a.missing("scalar", name)
	}
	return out, err
}

func (a *Adapter) SetScalar(ctx context.Context, name string, value Scalar) error {
	return a.source.SetScalar(ctx, a.resolveScalar(name), value)
}

func (a *Adapter) DeleteScalar(ctx context.Context, name string, forSet bool) error {
	return a.source.DeleteScalar(ctx, a.resolveScalar(name), forSet)
}

func (a *Adapter) ScalarNames(ctx context.Context) ([]string, error) {
	names, err := a.source.ScalarNames(ctx)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string, len(a.scalarAlias))
	for alias, src := range a.scalarAlias {
		reverse[src] = alias
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, aliasOf(reverse, n))
	}
	slices.Sort(out)
	return out, nil
}

func (a *Adapter) HasAxis(ctx context.Context, axis string, forChange bool) (bool, error) {
	return a.source.HasAxis(ctx, a.resolveAxis(axis), forChange)
}

func (a *Adapter) AddAxis(ctx context.Context, axis string, entries []string) error {
	return a.source.AddAxis(ctx, a.resolveAxis(axis), entries)
}

func (a *Adapter) DeleteAxis(ctx context.Context, axis string) error {
	return a.source.DeleteAxis(ctx, a.resolveAxis(axis))
}

func (a *Adapter) AxisLength(ctx context.Context, axis string) (int, error) {
	n, err := a.source.AxisLength(ctx, a.resolveAxis(axis))
	if errors.Is(err, errors.NotFound) {
		return 0, a.missing("axis", axis)
	}
	return n, err
}

func (a *Adapter) AxisEntries(ctx context.Context, axis string) ([]string, error) {
	entries, err := a.source.AxisEntries(ctx, a.resolveAxis(axis))
	if errors.Is(err, errors.NotFound) {
		return nil, a.missing("axis", axis)
	}
	return entries, err
}

func (a *Adapter) AxisNames(ctx context.Context) ([]string, error) {
	names, err := a.source.AxisNames(ctx)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string, len(a.axisAlias))
	for alias, src := range a.axisAlias {
		reverse[src] = alias
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, aliasOf(reverse, n))
	}
	slices.Sort(out)
	return out, nil
}

func (a *Adapter) HasVector(ctx context.Context, axis, name string) (bool, error) {
	return a.source.HasVector(ctx, a.resolveAxis(axis), a.resolveVector(axis, name))
}

func (a *Adapter) GetVector(ctx context.Context, axis, name string) (Vector, error) {
	out, err := a.source.GetVector(ctx, a.resolveAxis(axis), a.resolveVector(axis, name))
	if errors.Is(err, errors.NotFound) {
		return Vector{}, a.missing("vector", name)
	}
	return out, err
}

func (a *Adapter) SetVector(ctx context.Context, axis, name string, value Vector) error {
	return a.source.SetVector(ctx, a.resolveAxis(axis), a.resolveVector(axis, name), value)
}

func (a *Adapter) DeleteVector(ctx context.Context, axis, name string, forSet bool) error {
	return a.source.DeleteVector(ctx, a.resolveAxis(axis), a.resolveVector(axis, name), forSet)
}

func (a *Adapter) VectorNames(ctx context.Context, axis string) ([]string, error) {
	srcAxis := a.resolveAxis(axis)
	names, err := a.source.VectorNames(ctx, srcAxis)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string)
	for key, src := range a.vectorAlias {
		if key.axis == axis {
			reverse[src] = key.name
		}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, aliasOf(reverse, n))
	}
	slices.Sort(out)
	return out, nil
}

func (a *Adapter) GetEmptyDenseVector(ctx context.Context, axis, name string, kind ElementKind) (*VectorHandle, error) {
	return a.source.GetEmptyDenseVector(ctx, a.resolveAxis(axis), a.resolveVector(axis, name), kind)
}

func (a *Adapter) GetEmptySparseVector(ctx context.Context, axis, name string, kind ElementKind, nnz int, indKind ElementKind) (*SparseVectorHandle, error) {
	return a.source.GetEmptySparseVector(ctx, a.resolveAxis(axis), a.resolveVector(axis, name), kind, nnz, indKind)
}

func (a *Adapter) HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error) {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	return a.source.HasMatrix(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), forRelayout)
}

func (a *Adapter) GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error) {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	out, err := a.source.GetMatrix(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), major)
	if errors.Is(err, errors.NotFound) {
		return Matrix{}, a.missing("matrix", name)
	}
	return out, err
}

func (a *Adapter) SetMatrix(ctx context.Context, rows, cols, name string, value Matrix) error {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	return a.source.SetMatrix(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), value)
}

func (a *Adapter) DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	return a.source.DeleteMatrix(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), forSet)
}

func (a *Adapter) MatrixNames(ctx context.Context, rows, cols string) ([]string, error) {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	names, err := a.source.MatrixNames(ctx, srcRows, srcCols)
	if err != nil {
		return nil, err
	}
	reverse := make(map[string]string)
	for key, src := range a.matrixAlias {
		if key.rows == rows && key.cols == cols {
			reverse[src] = key.name
		}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, aliasOf(reverse, n))
	}
	slices.Sort(out)
	return out, nil
}

func (a *Adapter) GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis) (*MatrixHandle, error) {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	return a.source.GetEmptyDenseMatrix(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), kind, major)
}

func (a *Adapter) GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis, nnz int, indKind ElementKind) (*SparseMatrixHandle, error) {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	return a.source.GetEmptySparseMatrix(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), kind, major, nnz, indKind)
}

func (a *Adapter) Relayout(ctx context.Context, rows, cols, name string, from MajorAxis) (Matrix, error) {
	srcRows, srcCols := a.resolveAxis(rows), a.resolveAxis(cols)
	return a.source.Relayout(ctx, srcRows, srcCols, a.resolveMatrix(rows, cols, name), from)
}
