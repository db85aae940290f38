package daf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMemoryMintsDistinctIDs(t *testing.T) {
	a := NewMemory("a")
	b := NewMemory("b")
	require.NotEmpty(t, a.ID())
	require.NotEmpty(t, b.ID())
	require.NotEqual(t, a.ID(), b.ID())
}

func TestChainReportsWriteTargetID(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("a")
	b := NewMemory("b")
	chain, err := NewChain(ctx, "AB", []Format{a, b})
	require.NoError(t, err)
	require.Equal(t, b.ID(), chain.ID())
	require.NotEqual(t, a.ID(), chain.ID())
}

func TestReadOnlyReportsSourceID(t *testing.T) {
	a := NewMemory("a")
	ro := NewReadOnly(a)
	require.Equal(t, a.ID(), ro.ID())
}
