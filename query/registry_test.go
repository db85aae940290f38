package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func registerNoop(r *Registry, name string) error {
	return r.Register(Eltwise, name, func(map[string]interface{}) (Operation, error) {
		return absOp{}, nil
	})
}

func TestRegistrySameSiteIsIdempotent(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		require.NoError(t, registerNoop(r, "Square"))
	}
}

func TestRegistryDifferentSiteConflicts(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, registerNoop(r, "Square"))

	err := r.Register(Eltwise, "Square", func(map[string]interface{}) (Operation, error) {
		return absOp{}, nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "conflicting registrations for the eltwise operation: Square")
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Lookup("DoesNotExist")
	require.Error(t, err)
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	_, kind, err := DefaultRegistry.Lookup("Abs")
	require.NoError(t, err)
	require.Equal(t, Eltwise, kind)

	_, kind, err = DefaultRegistry.Lookup("Sum")
	require.NoError(t, err)
	require.Equal(t, Reduction, kind)
}
