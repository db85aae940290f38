package boltstore

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"

	"github.com/scidaf/daf"
	"github.com/scidaf/daf/errors"
)

// goType mirrors daf's own kindutil.go goType: it cannot be imported since
// that helper is unexported, and an independent on-disk codec needs its own
// reflect.Type table regardless of what the in-memory backend uses.
func goType(kind daf.ElementKind) (reflect.Type, error) {
	switch kind {
	case daf.KindInt8:
		return reflect.TypeOf(int8(0)), nil
	case daf.KindInt16:
		return reflect.TypeOf(int16(0)), nil
	case daf.KindInt32:
		return reflect.TypeOf(int32(0)), nil
	case daf.KindInt64:
		return reflect.TypeOf(int64(0)), nil
	case daf.KindUint8:
		return reflect.TypeOf(uint8(0)), nil
	case daf.KindUint16:
		return reflect.TypeOf(uint16(0)), nil
	case daf.KindUint32:
		return reflect.TypeOf(uint32(0)), nil
	case daf.KindUint64:
		return reflect.TypeOf(uint64(0)), nil
	case daf.KindFloat32:
		return reflect.TypeOf(float32(0)), nil
	case daf.KindFloat64:
		return reflect.TypeOf(float64(0)), nil
	case daf.KindBool:
		return reflect.TypeOf(false), nil
	case daf.KindString:
		return reflect.TypeOf(""), nil
	default:
		return nil, errors.New(errors.TypeMismatch, "unknown element kind")
	}
}

// encodeElement appends the fixed-width (or length-prefixed, for strings)
// encoding of one element to buf.
func encodeElement(buf *bytes.Buffer, kind daf.ElementKind, v reflect.Value) error {
	switch kind {
	case daf.KindInt8:
		return binary.Write(buf, binary.LittleEndian, int8(v.Int()))
	case daf.KindInt16:
		return binary.Write(buf, binary.LittleEndian, int16(v.Int()))
	case daf.KindInt32:
		return binary.Write(buf, binary.LittleEndian, int32(v.Int()))
	case daf.KindInt64:
		return binary.Write(buf, binary.LittleEndian, v.Int())
	case daf.KindUint8:
		return binary.Write(buf, binary.LittleEndian, uint8(v.Uint()))
	case daf.KindUint16:
		return binary.Write(buf, binary.LittleEndian, uint16(v.Uint()))
	case daf.KindUint32:
		return binary.Write(buf, binary.LittleEndian, uint32(v.Uint()))
	case daf.KindUint64:
		return binary.Write(buf, binary.LittleEndian, v.Uint())
	case daf.KindFloat32:
		return binary.Write(buf, binary.LittleEndian, float32(v.Float()))
	case daf.KindFloat64:
		return binary.Write(buf, binary.LittleEndian, v.Float())
	case daf.KindBool:
		b := byte(0)
		if v.Bool() {
			b = 1
		}
		return buf.WriteByte(b)
	case daf.KindString:
		s := v.String()
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
			return err
		}
		_, err := buf.WriteString(s)
		return err
	default:
		return errors.New(errors.TypeMismatch, "unknown element kind")
	}
}

// decodeElement reads one element of kind from r.
func decodeElement(r *bytes.Reader, kind daf.ElementKind) (interface{}, error) {
	switch kind {
	case daf.KindInt8:
		var x int8
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindInt16:
		var x int16
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindInt32:
		var x int32
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindInt64:
		var x int64
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindUint8:
		var x uint8
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindUint16:
		var x uint16
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindUint32:
		var x uint32
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindUint64:
		var x uint64
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindFloat32:
		var x float32
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindFloat64:
		var x float64
		err := binary.Read(r, binary.LittleEndian, &x)
		return x, err
	case daf.KindBool:
		b, err := r.ReadByte()
		return b != 0, err
	case daf.KindString:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return nil, errors.New(errors.TypeMismatch, "unknown element kind")
	}
}

// encodeScalar serializes a tagged scalar value: one kind byte followed by
// the element's fixed-width (or length-prefixed) encoding.
func encodeScalar(kind daf.ElementKind, value interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(kind))
	if err := encodeElement(buf, kind, reflect.ValueOf(value)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeScalar(data []byte) (daf.ElementKind, interface{}, error) {
	r := bytes.NewReader(data)
	kindByte, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	kind := daf.ElementKind(kindByte)
	value, err := decodeElement(r, kind)
	return kind, value, err
}

// encodeSlice serializes a tagged typed slice: kind byte, 4-byte element
// count, then each element in order.
func encodeSlice(kind daf.ElementKind, values interface{}) ([]byte, error) {
	rv := reflect.ValueOf(values)
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(kind))
	if err := binary.Write(buf, binary.LittleEndian, uint32(rv.Len())); err != nil {
		return nil, err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := encodeElement(buf, kind, rv.Index(i)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeSlice(data []byte) (daf.ElementKind, interface{}, error) {
	r := bytes.NewReader(data)
	kindByte, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	kind := daf.ElementKind(kindByte)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, err
	}
	t, err := goType(kind)
	if err != nil {
		return 0, nil, err
	}
	out := reflect.MakeSlice(reflect.SliceOf(t), int(n), int(n))
	for i := 0; i < int(n); i++ {
		v, err := decodeElement(r, kind)
		if err != nil {
			return 0, nil, err
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return kind, out.Interface(), nil
}

// encodeIntSlice/decodeIntSlice serialize a []int array (sparse matrix
// Indices/Indptr), always as 4-byte little-endian entries.
func encodeIntSlice(buf *bytes.Buffer, xs []int) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := binary.Write(buf, binary.LittleEndian, uint32(x)); err != nil {
			return err
		}
	}
	return nil
}

func decodeIntSlice(r *bytes.Reader) ([]int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		var x uint32
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, err
		}
		out[i] = int(x)
	}
	return out, nil
}

// encodeMatrix serializes a Matrix's layout header followed by its dense
// array or its three sparse arrays back-to-back (SPEC_FULL.md §4.9).
func encodeMatrix(mat daf.Matrix) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(mat.Layout.Kind))
	buf.WriteByte(byte(mat.Layout.Storage))
	if err := binary.Write(buf, binary.LittleEndian, uint32(mat.Layout.Shape.Rows)); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(mat.Layout.Shape.Cols)); err != nil {
		return nil, err
	}

	if mat.Layout.Storage == daf.Dense {
		rv := reflect.ValueOf(mat.Dense)
		for i := 0; i < rv.Len(); i++ {
			if err := encodeElement(buf, mat.Layout.Kind, rv.Index(i)); err != nil {
				return nil, err
			}
		}
		return buf.Bytes(), nil
	}

	buf.WriteByte(byte(mat.Layout.IndexKind))
	if err := binary.Write(buf, binary.LittleEndian, uint32(mat.Layout.NNZ)); err != nil {
		return nil, err
	}
	if err := encodeIntSlice(buf, mat.Sparse.Indptr); err != nil {
		return nil, err
	}
	if err := encodeIntSlice(buf, mat.Sparse.Indices); err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(mat.Sparse.Values)
	for i := 0; i < rv.Len(); i++ {
		if err := encodeElement(buf, mat.Layout.Kind, rv.Index(i)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeMatrix(data []byte, major daf.MajorAxis) (daf.Matrix, error) {
	r := bytes.NewReader(data)
	kindByte, err := r.ReadByte()
	if err != nil {
		return daf.Matrix{}, err
	}
	storageByte, err := r.ReadByte()
	if err != nil {
		return daf.Matrix{}, err
	}
	kind := daf.ElementKind(kindByte)
	storage := daf.StorageKind(storageByte)
	var rows, cols uint32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return daf.Matrix{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return daf.Matrix{}, err
	}
	layout := daf.MatrixLayout{Kind: kind, Shape: daf.Shape{Rows: int(rows), Cols: int(cols)}, Major: major, Storage: storage}

	if storage == daf.Dense {
		t, err := goType(kind)
		if err != nil {
			return daf.Matrix{}, err
		}
		n := int(rows) * int(cols)
		out := reflect.MakeSlice(reflect.SliceOf(t), n, n)
		for i := 0; i < n; i++ {
			v, err := decodeElement(r, kind)
			if err != nil {
				return daf.Matrix{}, err
			}
			out.Index(i).Set(reflect.ValueOf(v))
		}
		return daf.Matrix{Layout: layout, Dense: out.Interface()}, nil
	}

	indKindByte, err := r.ReadByte()
	if err != nil {
		return daf.Matrix{}, err
	}
	layout.IndexKind = daf.ElementKind(indKindByte)
	var nnz uint32
	if err := binary.Read(r, binary.LittleEndian, &nnz); err != nil {
		return daf.Matrix{}, err
	}
	layout.NNZ = int(nnz)
	indptr, err := decodeIntSlice(r)
	if err != nil {
		return daf.Matrix{}, err
	}
	indices, err := decodeIntSlice(r)
	if err != nil {
		return daf.Matrix{}, err
	}
	t, err := goType(kind)
	if err != nil {
		return daf.Matrix{}, err
	}
	values := reflect.MakeSlice(reflect.SliceOf(t), int(nnz), int(nnz))
	for i := 0; i < int(nnz); i++ {
		v, err := decodeElement(r, kind)
		if err != nil {
			return daf.Matrix{}, err
		}
		values.Index(i).Set(reflect.ValueOf(v))
	}
	return daf.Matrix{Layout: layout, Sparse: &daf.SparseMatrix{Indptr: indptr, Indices: indices, Values: values.Interface()}}, nil
}
