package daf

import (
	"reflect"

	"github.com/scidaf/daf/errors"
)

// goType returns the zero-value-producing reflect.Type for an ElementKind.
// This is the one place daf uses reflection for element-kind polymorphism:
// purely structural operations (alloc/len/index/append), never the numeric
// kernels a query operation runs per element - those stay monomorphized
// type switches (query/ops_builtin.go), per spec.md §9's design note to
// avoid virtual per-element dispatch.
func goType(kind ElementKind) (reflect.Type, error) {
	switch kind {
	case KindInt8:
		return reflect.TypeOf(int8(0)), nil
	case KindInt16:
		return reflect.TypeOf(int16(0)), nil
	case KindInt32:
		return reflect.TypeOf(int32(0)), nil
	case KindInt64:
		return reflect.TypeOf(int64(0)), nil
	case KindUint8:
		return reflect.TypeOf(uint8(0)), nil
	case KindUint16:
		return reflect.TypeOf(uint16(0)), nil
	case KindUint32:
		return reflect.TypeOf(uint32(0)), nil
	case KindUint64:
		return reflect.TypeOf(uint64(0)), nil
	case KindFloat32:
		return reflect.TypeOf(float32(0)), nil
	case KindFloat64:
		return reflect.TypeOf(float64(0)), nil
	case KindBool:
		return reflect.TypeOf(false), nil
	case KindString:
		return reflect.TypeOf(""), nil
	default:
		return nil, errors.New(errors.TypeMismatch, "unknown element kind")
	}
}

// zeroSlice allocates a zero-valued slice of kind with length n.
func zeroSlice(kind ElementKind, n int) (interface{}, error) {
	t, err := goType(kind)
	if err != nil {
		return nil, err
	}
	return reflect.MakeSlice(reflect.SliceOf(t), n, n).Interface(), nil
}

// sliceLen returns the length of a typed slice value produced by
// zeroSlice/filled by a caller, or an error if v is not a slice.
func sliceLen(v interface{}) (int, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return 0, errors.New(errors.TypeMismatch, "value is not a slice")
	}
	return rv.Len(), nil
}

// broadcastSlice returns a slice of kind with length n, every element set
// to scalar (spec.md §4.4 "set_vector(value|scalar-broadcast)").
func broadcastSlice(kind ElementKind, scalar interface{}, n int) (interface{}, error) {
	t, err := goType(kind)
	if err != nil {
		return nil, err
	}
	sv := reflect.ValueOf(scalar)
	if !sv.Type().AssignableTo(t) {
		if sv.Type().ConvertibleTo(t) {
			sv = sv.Convert(t)
		} else {
			return nil, errors.New(errors.TypeMismatch, "broadcast value does not match element kind")
		}
	}
	out := reflect.MakeSlice(reflect.SliceOf(t), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).Set(sv)
	}
	return out.Interface(), nil
}

// cloneSlice returns a shallow, independent copy of a typed slice, used
// whenever a backend must not hand out a reference to its own live
// storage (spec.md §5 "Shared resources").
func cloneSlice(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}

// selectIndices returns a new slice containing v[indices[0]], v[indices[1]], ...
func selectIndices(v interface{}, indices []int) interface{} {
	rv := reflect.ValueOf(v)
	out := reflect.MakeSlice(rv.Type(), len(indices), len(indices))
	for i, idx := range indices {
		out.Index(i).Set(rv.Index(idx))
	}
	return out.Interface()
}

// appendSlices concatenates a and b, which must share an element type.
func appendSlices(a, b interface{}) interface{} {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	out := reflect.MakeSlice(av.Type(), 0, av.Len()+bv.Len())
	out = reflect.AppendSlice(out, av)
	out = reflect.AppendSlice(out, bv)
	return out.Interface()
}

// indexable wraps a reflect.Value over a typed slice for positional
// get/set access, used by matrix relayout (memory.go's transposeMatrix)
// where both read and write positions are computed arithmetically rather
// than walked in order.
type indexable struct {
	rv reflect.Value
}

func reflectIndexable(v interface{}) indexable {
	return indexable{rv: reflect.ValueOf(v)}
}

func (s indexable) at(i int) interface{} {
	return s.rv.Index(i).Interface()
}

func (s indexable) index(i int, v interface{}) {
	s.rv.Index(i).Set(reflect.ValueOf(v))
}

// sliceEqual reports whether two typed slices hold identical elements in
// identical order.
func sliceEqual(a, b interface{}) bool {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Len() != bv.Len() {
		return false
	}
	for i := 0; i < av.Len(); i++ {
		if av.Index(i).Interface() != bv.Index(i).Interface() {
			return false
		}
	}
	return true
}
