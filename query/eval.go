package query

import (
	"context"
	"fmt"
	"reflect"

	"github.com/scidaf/daf"
	"github.com/scidaf/daf/errors"
)

// ResultKind discriminates the shape of a Result.
type ResultKind int

const (
	ResultScalar ResultKind = iota
	ResultVector
	ResultMatrix
)

// Result is the value produced by evaluating a query: exactly one of
// Scalar/Vector/Matrix is meaningful, chosen by Kind.
type Result struct {
	Kind   ResultKind
	Elem   daf.ElementKind // element kind of Scalar/Vector, or dense kind of Matrix
	Scalar interface{}
	Vector interface{} // typed slice
	Matrix daf.Matrix
	// Axis is the axis a Vector result is attached to, when known (the
	// direct output of a vector selector); it's needed to resolve
	// entry-name indexing and mask lookups against AxisEntries/GetVector.
	Axis string
}

// Operation is implemented by both element-wise and reduction kernels
// registered in a Registry.
type Operation interface {
	// Apply transforms in, returning a Result of the same or reduced
	// shape.
	Apply(in Result) (Result, error)
}

// Evaluate parses and runs expr against f's data (spec.md §4.7).
func Evaluate(ctx context.Context, f daf.Format, expr string) (Result, error) {
	return EvaluateWith(ctx, f, DefaultRegistry, expr)
}

// EvaluateWith is Evaluate against an explicit registry, useful for
// tests that don't want to pollute DefaultRegistry.
func EvaluateWith(ctx context.Context, f daf.Format, reg *Registry, expr string) (Result, error) {
	q, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	res, err := resolveSelector(ctx, f, q.Selector)
	if err != nil {
		return Result{}, err
	}
	for _, stage := range q.Stages {
		switch st := stage.(type) {
		case IndexStage:
			res, err = applyIndex(ctx, f, res, st)
		case OpStage:
			res, err = applyOp(reg, res, st)
		default:
			err = errors.New(errors.QueryParseError, fmt.Sprintf("unsupported stage type %T", stage))
		}
		if err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func resolveSelector(ctx context.Context, f daf.Format, sel Selector) (Result, error) {
	switch sel.Kind {
	case SelectScalar:
		s, err := f.GetScalar(ctx, sel.Name)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultScalar, Elem: s.Kind, Scalar: s.Value}, nil
	case SelectVector:
		v, err := f.GetVector(ctx, sel.Axis, sel.Name)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultVector, Elem: v.Kind, Vector: v.Values, Axis: sel.Axis}, nil
	case SelectMatrix:
		m, err := f.GetMatrix(ctx, sel.Rows, sel.Cols, sel.Name, daf.RowMajor)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultMatrix, Elem: m.Layout.Kind, Matrix: m}, nil
	default:
		return Result{}, errors.New(errors.QueryParseError, "unknown selector kind")
	}
}

// applyIndex resolves a "[...]" suffix: a single entry name projects the
// vector down to a scalar, several entry names slice it down to a
// shorter vector, and mask(name) slices it by a boolean vector of the
// same length (spec.md §4.7).
func applyIndex(ctx context.Context, f daf.Format, in Result, st IndexStage) (Result, error) {
	if in.Kind != ResultVector {
		return Result{}, errors.New(errors.QueryParseError, "an index suffix is only valid after a vector")
	}
	rv := reflect.ValueOf(in.Vector)

	if st.MaskVector != "" {
		if in.Axis == "" {
			return Result{}, errors.New(errors.QueryParseError, "mask indexing requires a vector selected directly from an axis")
		}
		mask, err := f.GetVector(ctx, in.Axis, st.MaskVector)
		if err != nil {
			return Result{}, err
		}
		maskBits, ok := mask.Values.([]bool)
		if !ok {
			return Result{}, errors.New(errors.TypeMismatch, fmt.Sprintf("mask vector %s is not boolean", st.MaskVector))
		}
		if len(maskBits) != rv.Len() {
			return Result{}, errors.New(errors.ShapeMismatch, fmt.Sprintf("mask vector %s has length %d, expected %d", st.MaskVector, len(maskBits), rv.Len()))
		}
		out := reflect.MakeSlice(rv.Type(), 0, rv.Len())
		for i, keep := range maskBits {
			if keep {
				out = reflect.Append(out, rv.Index(i))
			}
		}
		return Result{Kind: ResultVector, Elem: in.Elem, Vector: out.Interface(), Axis: in.Axis}, nil
	}

	indices, err := resolveEntryIndices(ctx, f, in.Axis, st.Entries)
	if err != nil {
		return Result{}, err
	}
	if len(indices) == 1 {
		idx := indices[0]
		if idx < 0 || idx >= rv.Len() {
			return Result{}, errors.New(errors.QueryParseError, fmt.Sprintf("index %d out of range", idx))
		}
		return Result{Kind: ResultScalar, Elem: in.Elem, Scalar: rv.Index(idx).Interface()}, nil
	}
	out := reflect.MakeSlice(rv.Type(), 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= rv.Len() {
			return Result{}, errors.New(errors.QueryParseError, fmt.Sprintf("index %d out of range", idx))
		}
		out = reflect.Append(out, rv.Index(idx))
	}
	return Result{Kind: ResultVector, Elem: in.Elem, Vector: out.Interface(), Axis: in.Axis}, nil
}

// resolveEntryIndices maps entry names to positions along axis, falling
// back to parsing each name as a plain decimal offset when no axis is
// known (or the name isn't a recognized entry).
func resolveEntryIndices(ctx context.Context, f daf.Format, axis string, entries []string) ([]int, error) {
	var names []string
	if axis != "" {
		var err error
		names, err = f.AxisEntries(ctx, axis)
		if err != nil {
			return nil, err
		}
	}
	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}

	out := make([]int, 0, len(entries))
	for _, e := range entries {
		if idx, ok := pos[e]; ok {
			out = append(out, idx)
			continue
		}
		idx, ok := parseIndexLiteral(e)
		if !ok {
			return nil, errors.New(errors.QueryParseError, fmt.Sprintf("unknown entry: %s", e))
		}
		out = append(out, idx)
	}
	return out, nil
}

func parseIndexLiteral(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}

func applyOp(reg *Registry, in Result, st OpStage) (Result, error) {
	ctor, _, err := reg.Lookup(st.Op)
	if err != nil {
		return Result{}, err
	}
	op, err := ctor(st.Params)
	if err != nil {
		return Result{}, err
	}
	return op.Apply(in)
}
