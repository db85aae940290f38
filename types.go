package daf

import "fmt"

// ElementKind is a closed tagged union of the element types daf stores in
// scalars, vector elements, and matrix elements. Matrices never use
// KindString (matrices are numeric/boolean only, per spec.md §4.1).
type ElementKind uint8

const (
	KindInvalid ElementKind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
)

// String returns the canonical lower-case name of the kind (e.g. "int64").
func (k ElementKind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// IsNumeric reports whether the kind may be used for matrix elements and
// participates in element-wise/reduction numeric operations.
func (k ElementKind) IsNumeric() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

// MajorAxis identifies which axis is contiguous in a matrix's stored
// representation.
type MajorAxis uint8

const (
	RowMajor MajorAxis = iota
	ColumnMajor
)

func (m MajorAxis) String() string {
	if m == ColumnMajor {
		return "column_major"
	}
	return "row_major"
}

// StorageKind distinguishes a dense matrix from a compressed sparse one.
type StorageKind uint8

const (
	Dense StorageKind = iota
	Sparse
)

func (s StorageKind) String() string {
	if s == Sparse {
		return "sparse"
	}
	return "dense"
}

// Shape is the (rows, cols) extent of a matrix, always expressed in
// logical row/column terms regardless of stored major axis.
type Shape struct {
	Rows int
	Cols int
}

// Transpose returns the shape with rows and columns swapped.
func (s Shape) Transpose() Shape {
	return Shape{Rows: s.Cols, Cols: s.Rows}
}

// MatrixLayout is the sole source of truth for a stored matrix's memory
// layout; callers must never infer layout from any other signal
// (spec.md §4.1).
type MatrixLayout struct {
	Kind    ElementKind
	Shape   Shape
	Major   MajorAxis
	Storage StorageKind
	// IndexKind is the element kind of the sparse index arrays
	// (row indices / column offsets). Zero value when Storage == Dense.
	IndexKind ElementKind
	// NNZ is the declared nonzero count for a sparse matrix.
	NNZ int
}

// Transposed returns the layout of relayout(M): shape and major axis both
// swap (spec.md §8 invariant 9: relayout(M).shape == transpose(M.shape)).
func (l MatrixLayout) Transposed() MatrixLayout {
	out := l
	out.Shape = l.Shape.Transpose()
	if l.Major == RowMajor {
		out.Major = ColumnMajor
	} else {
		out.Major = RowMajor
	}
	return out
}

func (l MatrixLayout) String() string {
	if l.Storage == Sparse {
		return fmt.Sprintf("%s %s %s sparse(%s,nnz=%d)", l.Kind, l.Shape, l.Major, l.IndexKind, l.NNZ)
	}
	return fmt.Sprintf("%s %s %s dense", l.Kind, l.Shape, l.Major)
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d)", s.Rows, s.Cols)
}

// SparseMatrix is the triple of arrays a sparse matrix exposes: minor-axis
// indices, offsets into those indices per major-axis entry ("indptr" in
// the directory/HDF5 on-disk vocabulary, spec.md §6), and values. Lengths:
// len(Indices) == len(Values) == NNZ; len(Indptr) == major dimension + 1.
type SparseMatrix struct {
	Indices []int
	Indptr  []int
	Values  interface{} // a typed slice matching Layout.Kind
}
