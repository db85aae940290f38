package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
	"golang.org/x/exp/slices"
)

// matrixSlot is the in-memory storage unit for one (rows, cols, name)
// matrix, holding up to two independently-materialized layouts (spec.md
// §3 "The same logical matrix may exist under both layouts as independent
// stored artifacts").
type matrixSlot struct {
	byMajor map[MajorAxis]Matrix
}

// Memory is the in-memory Format implementation named in spec.md §1 as
// one of daf's concrete backends. All mutating methods run under the
// dataset's own write lock; all reading methods run under its read lock.
type Memory struct {
	id   string
	name string
	lock *Lock

	header string
	footer string

	scalars  map[string]Scalar
	axisSeq  []string // preserves axis-creation order for deterministic AxisNames
	axes     map[string][]string
	vectors  map[string]map[string]Vector             // axis -> name -> vector
	matrices map[string]map[string]*matrixSlot         // "rows\x00cols" -> name -> slot
	versions map[string]uint32
}

// NewMemory returns an empty, writable in-memory dataset named name.
func NewMemory(name string) *Memory {
	return &Memory{
		id:       NewDatasetID(),
		name:     name,
		lock:     NewLock(),
		scalars:  make(map[string]Scalar),
		axes:     make(map[string][]string),
		vectors:  make(map[string]map[string]Vector),
		matrices: make(map[string]map[string]*matrixSlot),
		versions: make(map[string]uint32),
	}
}

func (m *Memory) ID() string       { return m.id }
func (m *Memory) Name() string     { return m.name }
func (m *Memory) Lock() *Lock      { return m.lock }
func (m *Memory) IsWriter() bool   { return true }

func (m *Memory) DescriptionHeader() string { return m.header }
func (m *Memory) DescriptionFooter() string { return m.footer }

// SetDescription sets the free-text header/footer returned by
// DescriptionHeader/DescriptionFooter (spec.md §4.3 "Meta").
func (m *Memory) SetDescription(header, footer string) {
	m.header = header
	m.footer = footer
}

func matrixPairKey(rows, cols string) string {
	return rows + "\x00" + cols
}

func (m *Memory) VersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	var v uint32
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		v = m.versions[key.String()]
		if v == 0 {
			v = 1
		}
		return nil
	})
	return v, err
}

func (m *Memory) IncrementVersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	var v uint32
	err := m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		v = m.bumpVersionLocked(key)
		return nil
	})
	return v, err
}

// bumpVersionLocked must only be called from within a held write lock.
func (m *Memory) bumpVersionLocked(key DataKey) uint32 {
	k := key.String()
	cur := m.versions[k]
	if cur == 0 { // never bumped: VersionCounter reports 1
		cur = 1
	}
	v := cur + 1
	if v == 0 { // wraparound, defined but not expected (spec.md §3)
		v = 1
	}
	m.versions[k] = v
	return v
}

// --- Scalars ---

func (m *Memory) HasScalar(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		_, ok = m.scalars[name]
		return nil
	})
	return ok, err
}

func (m *Memory) GetScalar(ctx context.Context, name string) (Scalar, error) {
	var out Scalar
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		s, ok := m.scalars[name]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing scalar: %s\nin the daf data: %s", name, m.name))
		}
		out = s
		return nil
	})
	return out, err
}

func (m *Memory) SetScalar(ctx context.Context, name string, value Scalar) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		m.scalars[name] = value
		m.bumpVersionLocked(ScalarNamesKey())
		return nil
	})
}

func (m *Memory) DeleteScalar(ctx context.Context, name string, forSet bool) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		if _, ok := m.scalars[name]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing scalar: %s\nin the daf data: %s", name, m.name))
		}
		delete(m.scalars, name)
		m.bumpVersionLocked(ScalarNamesKey())
		return nil
	})
}

func (m *Memory) ScalarNames(ctx context.Context) ([]string, error) {
	var names []string
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		for n := range m.scalars {
			names = append(names, n)
		}
		slices.Sort(names)
		return nil
	})
	return names, err
}

// --- Axes ---

func (m *Memory) HasAxis(ctx context.Context, axis string, forChange bool) (bool, error) {
	var ok bool
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		_, ok = m.axes[axis]
		return nil
	})
	return ok, err
}

func (m *Memory) AddAxis(ctx context.Context, axis string, entries []string) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		if _, ok := m.axes[axis]; ok {
			return errors.New(errors.AlreadyExists, fmt.Sprintf("axis already exists: %s\nin the daf data: %s", axis, m.name))
		}
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			if e == "" {
				return errors.New(errors.ShapeMismatch, fmt.Sprintf("empty entry in axis: %s", axis))
			}
			if _, dup := seen[e]; dup {
				return errors.New(errors.ShapeMismatch, fmt.Sprintf("duplicate entry: %s in axis: %s", e, axis))
			}
			seen[e] = struct{}{}
		}
		cp := make([]string, len(entries))
		copy(cp, entries)
		m.axes[axis] = cp
		m.axisSeq = append(m.axisSeq, axis)
		m.bumpVersionLocked(AxisNamesKey())
		m.bumpVersionLocked(AxisEntriesKey(axis))
		return nil
	})
}

func (m *Memory) DeleteAxis(ctx context.Context, axis string) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		if _, ok := m.axes[axis]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, m.name))
		}
		delete(m.axes, axis)
		delete(m.vectors, axis)
		for pairKey, names := range m.matrices {
			rows, cols := splitMatrixPairKey(pairKey)
			if rows == axis || cols == axis {
				for name := range names {
					m.bumpVersionLocked(MatrixKey(rows, cols, name, RowMajor))
					m.bumpVersionLocked(MatrixKey(rows, cols, name, ColumnMajor))
				}
				delete(m.matrices, pairKey)
			}
		}
		for i, a := range m.axisSeq {
			if a == axis {
				m.axisSeq = append(m.axisSeq[:i], m.axisSeq[i+1:]...)
				break
			}
		}
		m.bumpVersionLocked(AxisNamesKey())
		return nil
	})
}

func (m *Memory) AxisLength(ctx context.Context, axis string) (int, error) {
	var n int
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		entries, ok := m.axes[axis]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, m.name))
		}
		n = len(entries)
		return nil
	})
	return n, err
}

func (m *Memory) AxisEntries(ctx context.Context, axis string) ([]string, error) {
	var out []string
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		entries, ok := m.axes[axis]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, m.name))
		}
		cp := make([]string, len(entries))
		copy(cp, entries)
		out = cp
		return nil
	})
	return out, err
}

func (m *Memory) AxisNames(ctx context.Context) ([]string, error) {
	var out []string
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		out = append(out, m.axisSeq...)
		return nil
	})
	return out, err
}

func splitMatrixPairKey(pairKey string) (string, string) {
	for i := 0; i < len(pairKey); i++ {
		if pairKey[i] == 0 {
			return pairKey[:i], pairKey[i+1:]
		}
	}
	return pairKey, ""
}

// --- Vectors ---

func (m *Memory) HasVector(ctx context.Context, axis, name string) (bool, error) {
	var ok bool
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		byAxis, exists := m.vectors[axis]
		if !exists {
			return nil
		}
		_, ok = byAxis[name]
		return nil
	})
	return ok, err
}

func (m *Memory) GetVector(ctx context.Context, axis, name string) (Vector, error) {
	var out Vector
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		byAxis, exists := m.vectors[axis]
		if !exists {
			return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, m.name))
		}
		v, ok := byAxis[name]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, m.name))
		}
		out = Vector{Kind: v.Kind, Values: cloneSlice(v.Values)}
		return nil
	})
	return out, err
}

func (m *Memory) SetVector(ctx context.Context, axis, name string, value Vector) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		if _, ok := m.axes[axis]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, m.name))
		}
		if m.vectors[axis] == nil {
			m.vectors[axis] = make(map[string]Vector)
		}
		m.vectors[axis][name] = Vector{Kind: value.Kind, Values: cloneSlice(value.Values)}
		m.bumpVersionLocked(VectorKey(axis, name))
		return nil
	})
}

func (m *Memory) DeleteVector(ctx context.Context, axis, name string, forSet bool) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		byAxis := m.vectors[axis]
		if byAxis == nil {
			return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, m.name))
		}
		if _, ok := byAxis[name]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, m.name))
		}
		delete(byAxis, name)
		m.bumpVersionLocked(VectorKey(axis, name))
		return nil
	})
}

func (m *Memory) VectorNames(ctx context.Context, axis string) ([]string, error) {
	var out []string
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		for n := range m.vectors[axis] {
			out = append(out, n)
		}
		slices.Sort(out)
		return nil
	})
	return out, err
}

func (m *Memory) GetEmptyDenseVector(ctx context.Context, axis, name string, kind ElementKind) (*VectorHandle, error) {
	heldCtx, release, err := m.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := m.axes[axis]
	if !ok {
		release()
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, m.name))
	}
	buf, zerr := zeroSlice(kind, len(n))
	if zerr != nil {
		release()
		return nil, zerr
	}
	if m.vectors[axis] == nil {
		m.vectors[axis] = make(map[string]Vector)
	}
	m.vectors[axis][name] = Vector{Kind: kind, Values: buf}
	_ = heldCtx
	handle := &VectorHandle{
		Values: buf,
		guard:  NewGuard(release),
		seal: func() error {
			m.bumpVersionLocked(VectorKey(axis, name))
			return nil
		},
	}
	return handle, nil
}

func (m *Memory) GetEmptySparseVector(ctx context.Context, axis, name string, kind ElementKind, nnz int, indKind ElementKind) (*SparseVectorHandle, error) {
	heldCtx, release, err := m.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	_ = heldCtx
	if _, ok := m.axes[axis]; !ok {
		release()
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, m.name))
	}
	indices := make([]int, nnz)
	values, zerr := zeroSlice(kind, nnz)
	if zerr != nil {
		release()
		return nil, zerr
	}
	handle := &SparseVectorHandle{
		Indices: indices,
		Values:  values,
		guard:   NewGuard(release),
		seal: func(filled int) error {
			if m.vectors[axis] == nil {
				m.vectors[axis] = make(map[string]Vector)
			}
			// A sparse vector's dense spelling isn't kept by the
			// memory backend for sparse storage; it is reified
			// into a SparseMatrix-shaped pair of arrays instead,
			// stored as a Vector whose Values is the values
			// array truncated to filled and whose sparsity is
			// recorded by the matching indices slice length.
			m.vectors[axis][name] = Vector{Kind: kind, Values: selectIndices(values, rangeInts(filled))}
			m.bumpVersionLocked(VectorKey(axis, name))
			return nil
		},
	}
	return handle, nil
}

func rangeInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// --- Matrices ---

func (m *Memory) HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error) {
	var ok bool
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		byName := m.matrices[matrixPairKey(rows, cols)]
		if byName == nil {
			return nil
		}
		slot, exists := byName[name]
		ok = exists && len(slot.byMajor) > 0
		return nil
	})
	return ok, err
}

func (m *Memory) GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error) {
	var out Matrix
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		byName := m.matrices[matrixPairKey(rows, cols)]
		if byName == nil {
			return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, m.name))
		}
		slot, ok := byName[name]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, m.name))
		}
		mat, ok := slot.byMajor[major]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing %s layout of matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", major, name, rows, cols, m.name))
		}
		out = cloneMatrix(mat)
		return nil
	})
	return out, err
}

func cloneMatrix(mat Matrix) Matrix {
	out := Matrix{Layout: mat.Layout}
	if mat.Dense != nil {
		out.Dense = cloneSlice(mat.Dense)
	}
	if mat.Sparse != nil {
		idx := make([]int, len(mat.Sparse.Indices))
		copy(idx, mat.Sparse.Indices)
		ptr := make([]int, len(mat.Sparse.Indptr))
		copy(ptr, mat.Sparse.Indptr)
		out.Sparse = &SparseMatrix{Indices: idx, Indptr: ptr, Values: cloneSlice(mat.Sparse.Values)}
	}
	return out
}

func (m *Memory) SetMatrix(ctx context.Context, rows, cols, name string, value Matrix) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		if _, ok := m.axes[rows]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", rows, m.name))
		}
		if _, ok := m.axes[cols]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", cols, m.name))
		}
		pairKey := matrixPairKey(rows, cols)
		if m.matrices[pairKey] == nil {
			m.matrices[pairKey] = make(map[string]*matrixSlot)
		}
		slot, ok := m.matrices[pairKey][name]
		if !ok {
			slot = &matrixSlot{byMajor: make(map[MajorAxis]Matrix)}
			m.matrices[pairKey][name] = slot
		}
		slot.byMajor[value.Layout.Major] = cloneMatrix(value)
		m.bumpVersionLocked(MatrixKey(rows, cols, name, value.Layout.Major))
		return nil
	})
}

func (m *Memory) DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error {
	return m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		pairKey := matrixPairKey(rows, cols)
		byName := m.matrices[pairKey]
		if byName == nil {
			return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, m.name))
		}
		if _, ok := byName[name]; !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, m.name))
		}
		delete(byName, name)
		m.bumpVersionLocked(MatrixKey(rows, cols, name, RowMajor))
		m.bumpVersionLocked(MatrixKey(rows, cols, name, ColumnMajor))
		return nil
	})
}

func (m *Memory) MatrixNames(ctx context.Context, rows, cols string) ([]string, error) {
	var out []string
	err := m.lock.WithReadLock(ctx, func(ctx context.Context) error {
		for n, slot := range m.matrices[matrixPairKey(rows, cols)] {
			if len(slot.byMajor) > 0 {
				out = append(out, n)
			}
		}
		slices.Sort(out)
		return nil
	})
	return out, err
}

func (m *Memory) GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis) (*MatrixHandle, error) {
	_, release, err := m.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	rn, ok := m.axes[rows]
	if !ok {
		release()
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", rows, m.name))
	}
	cn, ok := m.axes[cols]
	if !ok {
		release()
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", cols, m.name))
	}
	n := len(rn) * len(cn)
	buf, zerr := zeroSlice(kind, n)
	if zerr != nil {
		release()
		return nil, zerr
	}
	layout := MatrixLayout{Kind: kind, Shape: Shape{Rows: len(rn), Cols: len(cn)}, Major: major, Storage: Dense}
	pairKey := matrixPairKey(rows, cols)
	if m.matrices[pairKey] == nil {
		m.matrices[pairKey] = make(map[string]*matrixSlot)
	}
	slot, ok := m.matrices[pairKey][name]
	if !ok {
		slot = &matrixSlot{byMajor: make(map[MajorAxis]Matrix)}
		m.matrices[pairKey][name] = slot
	}
	slot.byMajor[major] = Matrix{Layout: layout, Dense: buf}
	handle := &MatrixHandle{
		Dense: buf,
		guard: NewGuard(release),
		seal: func() error {
			m.bumpVersionLocked(MatrixKey(rows, cols, name, major))
			return nil
		},
	}
	return handle, nil
}

func (m *Memory) GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis, nnz int, indKind ElementKind) (*SparseMatrixHandle, error) {
	_, release, err := m.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	rn, ok := m.axes[rows]
	if !ok {
		release()
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", rows, m.name))
	}
	cn, ok := m.axes[cols]
	if !ok {
		release()
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", cols, m.name))
	}
	majorDim := len(rn)
	if major == ColumnMajor {
		majorDim = len(cn)
	}
	indices := make([]int, nnz)
	indptr := make([]int, majorDim+1)
	values, zerr := zeroSlice(kind, nnz)
	if zerr != nil {
		release()
		return nil, zerr
	}
	layout := MatrixLayout{Kind: kind, Shape: Shape{Rows: len(rn), Cols: len(cn)}, Major: major, Storage: Sparse, IndexKind: indKind, NNZ: nnz}
	handle := &SparseMatrixHandle{
		Indices: indices,
		Indptr:  indptr,
		Values:  values,
		guard:   NewGuard(release),
		seal: func(filled int) error {
			finalLayout := layout
			finalLayout.NNZ = filled
			pairKey := matrixPairKey(rows, cols)
			if m.matrices[pairKey] == nil {
				m.matrices[pairKey] = make(map[string]*matrixSlot)
			}
			slot, ok := m.matrices[pairKey][name]
			if !ok {
				slot = &matrixSlot{byMajor: make(map[MajorAxis]Matrix)}
				m.matrices[pairKey][name] = slot
			}
			slot.byMajor[major] = Matrix{
				Layout: finalLayout,
				Sparse: &SparseMatrix{
					Indices: indices[:filled],
					Indptr:  indptr,
					Values:  selectIndices(values, rangeInts(filled)),
				},
			}
			m.bumpVersionLocked(MatrixKey(rows, cols, name, major))
			return nil
		},
	}
	return handle, nil
}

// Relayout materializes the transposed stored copy of a matrix (spec.md
// §3 "Relayout", §8 invariant 9).
func (m *Memory) Relayout(ctx context.Context, rows, cols, name string, from MajorAxis) (Matrix, error) {
	var out Matrix
	err := m.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		pairKey := matrixPairKey(rows, cols)
		byName := m.matrices[pairKey]
		if byName == nil {
			return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, m.name))
		}
		slot, ok := byName[name]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, m.name))
		}
		src, ok := slot.byMajor[from]
		if !ok {
			return errors.New(errors.NotFound, fmt.Sprintf("missing %s layout of matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", from, name, rows, cols, m.name))
		}
		dst := transposeMatrix(src)
		slot.byMajor[dst.Layout.Major] = dst
		m.bumpVersionLocked(MatrixKey(rows, cols, name, dst.Layout.Major))
		out = cloneMatrix(dst)
		return nil
	})
	return out, err
}

// transposeMatrix builds relayout(mat): a new stored matrix with rows and
// columns swapped, satisfying relayout(M)[j,i] == M[i,j] for all (i,j)
// (spec.md §8 invariant 9).
func transposeMatrix(mat Matrix) Matrix {
	newLayout := mat.Layout.Transposed()
	oldRows, oldCols := mat.Layout.Shape.Rows, mat.Layout.Shape.Cols
	newRows, newCols := oldCols, oldRows

	if mat.Layout.Storage == Dense {
		newBuf, _ := zeroSlice(mat.Layout.Kind, oldRows*oldCols)
		srcV := reflectIndexable(mat.Dense)
		dstV := reflectIndexable(newBuf)
		for i := 0; i < oldRows; i++ {
			for j := 0; j < oldCols; j++ {
				var srcIdx int
				if mat.Layout.Major == RowMajor {
					srcIdx = i*oldCols + j
				} else {
					srcIdx = j*oldRows + i
				}
				// transposed element lives at new (row=j, col=i)
				var dstIdx int
				if newLayout.Major == RowMajor {
					dstIdx = j*newCols + i
				} else {
					dstIdx = i*newRows + j
				}
				dstV.index(dstIdx, srcV.at(srcIdx))
			}
		}
		return Matrix{Layout: newLayout, Dense: newBuf}
	}

	// Sparse relayout: decompress to (row, col) coordinates in the old
	// matrix, swap row/col, then recompress along the new major axis.
	// Kept simple (not the fastest possible sparse transpose) since
	// relayout is not a hot-path operation in this core.
	type coord struct {
		r, c int
		v    interface{}
	}
	var coords []coord
	srcV := reflectIndexable(mat.Sparse.Values)
	oldMajorDim := oldRows
	if mat.Layout.Major == ColumnMajor {
		oldMajorDim = oldCols
	}
	for major := 0; major < oldMajorDim; major++ {
		for p := mat.Sparse.Indptr[major]; p < mat.Sparse.Indptr[major+1]; p++ {
			minor := mat.Sparse.Indices[p]
			if mat.Layout.Major == RowMajor {
				coords = append(coords, coord{r: major, c: minor, v: srcV.at(p)})
			} else {
				coords = append(coords, coord{r: minor, c: major, v: srcV.at(p)})
			}
		}
	}
	// Swap row/col for the transposed matrix.
	for i := range coords {
		coords[i].r, coords[i].c = coords[i].c, coords[i].r
	}
	newMajorDim := newRows
	if newLayout.Major == ColumnMajor {
		newMajorDim = newCols
	}
	buckets := make([][]coord, newMajorDim)
	for _, co := range coords {
		key := co.r
		if newLayout.Major == ColumnMajor {
			key = co.c
		}
		buckets[key] = append(buckets[key], co)
	}
	indptr := make([]int, newMajorDim+1)
	var indices []int
	valsSlice, _ := zeroSlice(mat.Layout.Kind, len(coords))
	dstV := reflectIndexable(valsSlice)
	pos := 0
	for major := 0; major < newMajorDim; major++ {
		indptr[major] = pos
		for _, co := range buckets[major] {
			minor := co.c
			if newLayout.Major == ColumnMajor {
				minor = co.r
			}
			indices = append(indices, minor)
			dstV.index(pos, co.v)
			pos++
		}
	}
	indptr[newMajorDim] = pos
	newLayout.NNZ = len(coords)
	return Matrix{Layout: newLayout, Sparse: &SparseMatrix{Indices: indices, Indptr: indptr, Values: valsSlice}}
}
