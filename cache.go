package daf

import (
	"fmt"
	"sync"
)

// DataKeyKind discriminates the shape of a DataKey (spec.md §4.2).
type DataKeyKind uint8

const (
	KeyScalarNames DataKeyKind = iota
	KeyAxisNames
	KeyAxisEntries
	KeyVector
	KeyMatrix
)

// DataKey is the discriminated key used both by the per-artifact version
// counters every Format implementation maintains and by the derived-value
// Cache layered on top of them. Not every field applies to every Kind:
//
//	KeyScalarNames: no other fields.
//	KeyAxisNames:   no other fields.
//	KeyAxisEntries: Axis.
//	KeyVector:      Axis, Name.
//	KeyMatrix:      Rows, Cols, Name, Layout.
type DataKey struct {
	Kind   DataKeyKind
	Axis   string
	Rows   string
	Cols   string
	Name   string
	Layout MajorAxis
}

// String renders a stable, human-legible form used as the on-disk key for
// persisted version counters (boltstore's "version\x00<key>" meta entries) and
// in diagnostic logging.
func (k DataKey) String() string {
	switch k.Kind {
	case KeyScalarNames:
		return "scalar-names"
	case KeyAxisNames:
		return "axis-names"
	case KeyAxisEntries:
		return fmt.Sprintf("axis-entries(%s)", k.Axis)
	case KeyVector:
		return fmt.Sprintf("vector(%s,%s)", k.Axis, k.Name)
	case KeyMatrix:
		return fmt.Sprintf("matrix(%s,%s,%s,%s)", k.Rows, k.Cols, k.Name, k.Layout)
	default:
		return "invalid-data-key"
	}
}

// ScalarNamesKey, AxisNamesKey, AxisEntriesKey, VectorKey and MatrixKey are
// constructors for the corresponding DataKey shapes.
func ScalarNamesKey() DataKey { return DataKey{Kind: KeyScalarNames} }
func AxisNamesKey() DataKey   { return DataKey{Kind: KeyAxisNames} }
func AxisEntriesKey(axis string) DataKey {
	return DataKey{Kind: KeyAxisEntries, Axis: axis}
}
func VectorKey(axis, name string) DataKey {
	return DataKey{Kind: KeyVector, Axis: axis, Name: name}
}
func MatrixKey(rows, cols, name string, layout MajorAxis) DataKey {
	return DataKey{Kind: KeyMatrix, Rows: rows, Cols: cols, Name: name, Layout: layout}
}

// Cache is a process-thread-safe memoization of derived arrays keyed by
// DataKey (spec.md §4.2). Entries are invalidated by version: a caller
// supplies the backend's current version counter for the key every time
// it asks for a value, and a cached value is only returned if it was
// computed against that same counter value. There is no size-based
// eviction; version-counter invalidation is the only policy daf needs
// (contrast with the teacher's LRU-evicting Cache, not carried over -
// see DESIGN.md).
type Cache struct {
	mu      sync.Mutex
	entries map[DataKey]cacheEntry
}

type cacheEntry struct {
	version uint32
	value   interface{}
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[DataKey]cacheEntry)}
}

// GetOrCompute returns the cached value for key if it was computed against
// the given version, otherwise it calls compute, stores the result tagged
// with version, and returns it. compute runs while the cache's internal
// mutex is held, so concurrent requests for the same stale key are
// naturally single-flighted rather than duplicating work.
func (c *Cache) GetOrCompute(key DataKey, version uint32, compute func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.version == version {
		return e.value, nil
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{version: version, value: v}
	return v, nil
}

// Invalidate removes a single key from the cache unconditionally. Most
// invalidation happens lazily (a stale version simply fails the match in
// GetOrCompute on next read); Invalidate exists for callers, such as
// delete operations, that want the memory released immediately.
func (c *Cache) Invalidate(key DataKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of memoized entries, for tests and diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
