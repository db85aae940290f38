package boltstore

import (
	"encoding/binary"
	"reflect"
)

// encodeU32/decodeU32 are used for version counters and axis lengths,
// stored as fixed 4-byte little-endian values throughout the store.
func encodeU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func decodeU32(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// makeZeroSlice allocates a zero-valued Go slice of type t with length n,
// the bbolt-backend counterpart of kindutil.go's zeroSlice.
func makeZeroSlice(t reflect.Type, n int) interface{} {
	return reflect.MakeSlice(reflect.SliceOf(t), n, n).Interface()
}

// sliceHead returns values[:n] as an interface{}, preserving the
// underlying element type.
func sliceHead(values interface{}, n int) interface{} {
	return reflect.ValueOf(values).Slice(0, n).Interface()
}
