package query

import (
	"fmt"

	"github.com/scidaf/daf"
	"github.com/scidaf/daf/errors"
)

func init() {
	must(DefaultRegistry.Register(Eltwise, "Abs", newAbs))
	must(DefaultRegistry.Register(Reduction, "Sum", newSum))
	must(DefaultRegistry.Register(Reduction, "Mean", newMean))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// absOp is Abs, a per-element absolute value over numeric vectors and
// matrices. Kernels are monomorphized by element kind (a type switch,
// not a reflect.Value per-element call) to keep the hot loop branch-free
// once dispatched (spec.md §9).
type absOp struct{}

func newAbs(params map[string]interface{}) (Operation, error) {
	return absOp{}, nil
}

func (absOp) Apply(in Result) (Result, error) {
	switch in.Kind {
	case ResultScalar:
		v, err := absScalar(in.Elem, in.Scalar)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultScalar, Elem: in.Elem, Scalar: v}, nil
	case ResultVector:
		v, err := absVector(in.Elem, in.Vector)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultVector, Elem: in.Elem, Vector: v, Axis: in.Axis}, nil
	case ResultMatrix:
		m, err := absMatrix(in.Matrix)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultMatrix, Elem: in.Elem, Matrix: m}, nil
	default:
		return Result{}, errors.New(errors.TypeMismatch, fmt.Sprintf("Abs is not defined for result kind %v", in.Kind))
	}
}

// absMatrix applies Abs element-wise over a dense matrix's backing array,
// preserving its layout (shape, major, kind).
func absMatrix(mat daf.Matrix) (daf.Matrix, error) {
	if mat.Layout.Storage != daf.Dense {
		return daf.Matrix{}, errors.New(errors.TypeMismatch, "Abs over a matrix supports dense storage only")
	}
	out, err := absVector(mat.Layout.Kind, mat.Dense)
	if err != nil {
		return daf.Matrix{}, err
	}
	return daf.Matrix{Layout: mat.Layout, Dense: out}, nil
}

func absScalar(kind daf.ElementKind, v interface{}) (interface{}, error) {
	switch kind {
	case daf.KindInt8:
		return absInt(int64(v.(int8))), nil
	case daf.KindInt16:
		return absInt(int64(v.(int16))), nil
	case daf.KindInt32:
		return int32(absInt(int64(v.(int32)))), nil
	case daf.KindInt64:
		return absInt(v.(int64)), nil
	case daf.KindFloat32:
		f := v.(float32)
		if f < 0 {
			f = -f
		}
		return f, nil
	case daf.KindFloat64:
		f := v.(float64)
		if f < 0 {
			f = -f
		}
		return f, nil
	default:
		return nil, errors.New(errors.TypeMismatch, fmt.Sprintf("Abs is not defined for %v", kind))
	}
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absVector(kind daf.ElementKind, values interface{}) (interface{}, error) {
	switch kind {
	case daf.KindInt32:
		src := values.([]int32)
		out := make([]int32, len(src))
		for i, v := range src {
			if v < 0 {
				v = -v
			}
			out[i] = v
		}
		return out, nil
	case daf.KindInt64:
		src := values.([]int64)
		out := make([]int64, len(src))
		for i, v := range src {
			if v < 0 {
				v = -v
			}
			out[i] = v
		}
		return out, nil
	case daf.KindFloat32:
		src := values.([]float32)
		out := make([]float32, len(src))
		for i, v := range src {
			if v < 0 {
				v = -v
			}
			out[i] = v
		}
		return out, nil
	case daf.KindFloat64:
		src := values.([]float64)
		out := make([]float64, len(src))
		for i, v := range src {
			if v < 0 {
				v = -v
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, errors.New(errors.TypeMismatch, fmt.Sprintf("Abs is not defined for %v", kind))
	}
}

// sumOp and meanOp are reductions: vector -> scalar, or matrix -> a
// vector over the non-reduced axis. A matrix reduction always collapses
// along rows, producing one result per column regardless of the matrix's
// storage major; spec.md §4.7 is ambiguous between "per the non-reduced
// axis" and "per-column for column-major", and this resolves the
// ambiguity deliberately rather than the spec mandating it (see
// DESIGN.md). Both kernels always yield float64, regardless of the
// input element kind, so results carry daf.KindFloat64.
type sumOp struct{}

func newSum(params map[string]interface{}) (Operation, error) {
	return sumOp{}, nil
}

func (sumOp) Apply(in Result) (Result, error) {
	switch in.Kind {
	case ResultVector:
		sum, err := sumVector(in.Elem, in.Vector)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultScalar, Elem: daf.KindFloat64, Scalar: sum}, nil
	case ResultMatrix:
		vec, err := sumMatrixColumns(in.Matrix)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultVector, Elem: daf.KindFloat64, Vector: vec}, nil
	default:
		return Result{}, errors.New(errors.TypeMismatch, "Sum does not support scalar inputs")
	}
}

type meanOp struct{}

func newMean(params map[string]interface{}) (Operation, error) {
	return meanOp{}, nil
}

func (meanOp) Apply(in Result) (Result, error) {
	switch in.Kind {
	case ResultVector:
		sum, err := sumVector(in.Elem, in.Vector)
		if err != nil {
			return Result{}, err
		}
		n, err := vectorLen(in.Vector)
		if err != nil {
			return Result{}, err
		}
		if n == 0 {
			return Result{}, errors.New(errors.ShapeMismatch, "Mean is undefined for an empty vector")
		}
		return Result{Kind: ResultScalar, Elem: daf.KindFloat64, Scalar: sum / float64(n)}, nil
	case ResultMatrix:
		rows := in.Matrix.Layout.Shape.Rows
		if rows == 0 {
			return Result{}, errors.New(errors.ShapeMismatch, "Mean is undefined for a matrix with no rows")
		}
		sums, err := sumMatrixColumns(in.Matrix)
		if err != nil {
			return Result{}, err
		}
		means := make([]float64, len(sums.([]float64)))
		for i, s := range sums.([]float64) {
			means[i] = s / float64(rows)
		}
		return Result{Kind: ResultVector, Elem: daf.KindFloat64, Vector: means}, nil
	default:
		return Result{}, errors.New(errors.TypeMismatch, "Mean does not support scalar inputs")
	}
}

func vectorLen(values interface{}) (int, error) {
	return daf.Vector{Values: values}.Len()
}

func sumVector(kind daf.ElementKind, values interface{}) (float64, error) {
	switch kind {
	case daf.KindInt32:
		var total float64
		for _, v := range values.([]int32) {
			total += float64(v)
		}
		return total, nil
	case daf.KindInt64:
		var total float64
		for _, v := range values.([]int64) {
			total += float64(v)
		}
		return total, nil
	case daf.KindFloat32:
		var total float64
		for _, v := range values.([]float32) {
			total += float64(v)
		}
		return total, nil
	case daf.KindFloat64:
		var total float64
		for _, v := range values.([]float64) {
			total += v
		}
		return total, nil
	default:
		return 0, errors.New(errors.TypeMismatch, fmt.Sprintf("Sum is not defined for %v", kind))
	}
}

// sumMatrixColumns reduces over rows, returning one sum per column, by
// reading the matrix through its natural (row, col) coordinates so the
// result is the same regardless of Major.
func sumMatrixColumns(mat daf.Matrix) (interface{}, error) {
	rows, cols := mat.Layout.Shape.Rows, mat.Layout.Shape.Cols
	if mat.Layout.Storage != daf.Dense {
		return nil, errors.New(errors.TypeMismatch, "Sum over a matrix currently supports dense storage only")
	}
	out := make([]float64, cols)
	switch mat.Layout.Kind {
	case daf.KindInt32:
		src := mat.Dense.([]int32)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out[j] += float64(src[denseIndex(mat.Layout.Major, i, j, rows, cols)])
			}
		}
	case daf.KindInt64:
		src := mat.Dense.([]int64)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out[j] += float64(src[denseIndex(mat.Layout.Major, i, j, rows, cols)])
			}
		}
	case daf.KindFloat32:
		src := mat.Dense.([]float32)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out[j] += float64(src[denseIndex(mat.Layout.Major, i, j, rows, cols)])
			}
		}
	case daf.KindFloat64:
		src := mat.Dense.([]float64)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out[j] += src[denseIndex(mat.Layout.Major, i, j, rows, cols)]
			}
		}
	default:
		return nil, errors.New(errors.TypeMismatch, fmt.Sprintf("Sum is not defined for %v", mat.Layout.Kind))
	}
	return out, nil
}

func denseIndex(major daf.MajorAxis, i, j, rows, cols int) int {
	if major == daf.RowMajor {
		return i*cols + j
	}
	return j*rows + i
}
