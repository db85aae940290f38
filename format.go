package daf

import "context"

// Scalar is a single named value (spec.md §3 "Scalar").
type Scalar struct {
	Kind  ElementKind
	Value interface{}
}

// Vector is a length-matched sequence of a single element type, attached
// to one axis (spec.md §3 "Vector"). Values holds a typed slice (e.g.
// []int64, []string) matching Kind.
type Vector struct {
	Kind   ElementKind
	Values interface{}
}

// Len returns the number of elements in the vector.
func (v Vector) Len() (int, error) {
	return sliceLen(v.Values)
}

// Matrix is a 2-D array over a (rows-axis, cols-axis) pair, either dense
// (Dense holds a flat typed slice) or sparse (Sparse holds the three
// compressed arrays), per spec.md §3 "Matrix".
type Matrix struct {
	Layout MatrixLayout
	Dense  interface{}
	Sparse *SparseMatrix
}

// VectorHandle is the writable handle returned by GetEmptyDenseVector.
// The caller fills Values in place; for the in-memory backend this is a
// true zero-copy fill since Values already is live storage, for a
// disk-backed Format the same field is a staging buffer that Seal writes
// through. Seal must be called exactly once, before the write lock the
// handle was obtained under is released.
type VectorHandle struct {
	Values interface{}
	seal   func() error
	guard  *Guard
}

// NewVectorHandle builds a VectorHandle around a backend-owned staging
// buffer, for use by Format implementations outside this package (e.g.
// boltstore) that cannot construct the struct literal directly since seal
// and guard are unexported.
func NewVectorHandle(values interface{}, guard *Guard, seal func() error) *VectorHandle {
	return &VectorHandle{Values: values, guard: guard, seal: seal}
}

// Seal finalizes the handle. It is idempotent-but-checked: a second call
// returns errors.LockMisuse (lock.go's Guard).
func (h *VectorHandle) Seal() error {
	err := h.seal()
	if relErr := h.guard.Release(); relErr != nil {
		return relErr
	}
	return err
}

// SparseVectorHandle is the writable handle returned by
// GetEmptySparseVector. Indices and Values must be filled to length
// Filled (<= NNZ declared at allocation) before calling Seal, which
// performs the role of spec.md §4.3's filled_empty_sparse.
type SparseVectorHandle struct {
	Indices []int
	Values  interface{}
	seal    func(filled int) error
	guard   *Guard
}

// NewSparseVectorHandle builds a SparseVectorHandle for use outside this
// package; see NewVectorHandle.
func NewSparseVectorHandle(indices []int, values interface{}, guard *Guard, seal func(filled int) error) *SparseVectorHandle {
	return &SparseVectorHandle{Indices: indices, Values: values, guard: guard, seal: seal}
}

// Seal finalizes the handle with the number of nonzero entries actually
// written (<= the NNZ requested at allocation).
func (h *SparseVectorHandle) Seal(filled int) error {
	err := h.seal(filled)
	if relErr := h.guard.Release(); relErr != nil {
		return relErr
	}
	return err
}

// MatrixHandle is the dense-matrix counterpart of VectorHandle.
type MatrixHandle struct {
	Dense interface{}
	seal  func() error
	guard *Guard
}

// NewMatrixHandle builds a MatrixHandle for use outside this package; see
// NewVectorHandle.
func NewMatrixHandle(dense interface{}, guard *Guard, seal func() error) *MatrixHandle {
	return &MatrixHandle{Dense: dense, guard: guard, seal: seal}
}

func (h *MatrixHandle) Seal() error {
	err := h.seal()
	if relErr := h.guard.Release(); relErr != nil {
		return relErr
	}
	return err
}

// SparseMatrixHandle is the sparse-matrix counterpart of
// SparseVectorHandle; Indptr has a fixed length (major dimension + 1) set
// at allocation time and is filled alongside Indices/Values.
type SparseMatrixHandle struct {
	Indices []int
	Indptr  []int
	Values  interface{}
	seal    func(filled int) error
	guard   *Guard
}

// NewSparseMatrixHandle builds a SparseMatrixHandle for use outside this
// package; see NewVectorHandle.
func NewSparseMatrixHandle(indices, indptr []int, values interface{}, guard *Guard, seal func(filled int) error) *SparseMatrixHandle {
	return &SparseMatrixHandle{Indices: indices, Indptr: indptr, Values: values, guard: guard, seal: seal}
}

func (h *SparseMatrixHandle) Seal(filled int) error {
	err := h.seal(filled)
	if relErr := h.guard.Release(); relErr != nil {
		return relErr
	}
	return err
}

// Format is the abstract backend contract every storage engine variant
// implements (spec.md §4.3/C3, §6). The façade (facade.go), the read-only
// wrapper (readonly.go), the chain engine (chain.go), views (view.go) and
// the query evaluator (query/) depend only on this interface, never on a
// concrete backend - Chain and View are themselves Format implementations,
// letting the core recurse uniformly over arbitrarily nested wrapping.
//
// Every method takes a context.Context purely to carry lock.go's
// reentrancy token; it is not used for cancellation (spec.md §5 "no
// cooperative yield points inside critical sections" - the core has no
// notion of a cancellable blocking acquisition).
type Format interface {
	// ID is a stable identity for the concrete backend (a UUID minted at
	// construction for memory/bolt backends; the identity of the write
	// target for a chain). Not part of the storage contract's
	// correctness invariants, used for diagnostics (SPEC_FULL.md §3.2).
	ID() string
	// Name is used as the "<dataset>" in error message templates
	// (spec.md §6).
	Name() string
	// Lock returns the dataset's reentrant readers-writer lock.
	Lock() *Lock
	// IsWriter reports whether mutating operations are permitted. False
	// for a ReadOnly wrapper and for read-only chain/view members.
	IsWriter() bool

	DescriptionHeader() string
	DescriptionFooter() string
	VersionCounter(ctx context.Context, key DataKey) (uint32, error)
	IncrementVersionCounter(ctx context.Context, key DataKey) (uint32, error)

	HasScalar(ctx context.Context, name string) (bool, error)
	GetScalar(ctx context.Context, name string) (Scalar, error)
	SetScalar(ctx context.Context, name string, value Scalar) error
	DeleteScalar(ctx context.Context, name string, forSet bool) error
	ScalarNames(ctx context.Context) ([]string, error)

	HasAxis(ctx context.Context, axis string, forChange bool) (bool, error)
	AddAxis(ctx context.Context, axis string, entries []string) error
	DeleteAxis(ctx context.Context, axis string) error
	AxisLength(ctx context.Context, axis string) (int, error)
	AxisEntries(ctx context.Context, axis string) ([]string, error)
	AxisNames(ctx context.Context) ([]string, error)

	HasVector(ctx context.Context, axis, name string) (bool, error)
	GetVector(ctx context.Context, axis, name string) (Vector, error)
	SetVector(ctx context.Context, axis, name string, value Vector) error
	DeleteVector(ctx context.Context, axis, name string, forSet bool) error
	VectorNames(ctx context.Context, axis string) ([]string, error)
	GetEmptyDenseVector(ctx context.Context, axis, name string, kind ElementKind) (*VectorHandle, error)
	GetEmptySparseVector(ctx context.Context, axis, name string, kind ElementKind, nnz int, indKind ElementKind) (*SparseVectorHandle, error)

	HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error)
	GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error)
	SetMatrix(ctx context.Context, rows, cols, name string, value Matrix) error
	DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error
	MatrixNames(ctx context.Context, rows, cols string) ([]string, error)
	GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis) (*MatrixHandle, error)
	GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis, nnz int, indKind ElementKind) (*SparseMatrixHandle, error)
	Relayout(ctx context.Context, rows, cols, name string, from MajorAxis) (Matrix, error)
}
