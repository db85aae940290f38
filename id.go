package daf

import "github.com/satori/go.uuid"

// NewDatasetID mints a random v4 UUID string for a concrete dataset's
// identity (SPEC_FULL.md §3.2), used by NewMemory and boltstore.Open.
// Chains, read-only wrappers, adapters, and views never mint their own
// ID; they report whatever backend they wrap reports. uuid.NewV4 only
// fails if the system entropy source is broken, in which case an empty
// ID degrades ID() to "" rather than panicking.
func NewDatasetID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
