package daf

import (
	"context"
	"testing"

	"github.com/scidaf/daf/errors"
	"github.com/stretchr/testify/require"
)

func TestChainLastWriterWinsForScalars(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("A")
	b := NewMemory("B")
	require.NoError(t, a.SetScalar(ctx, "s", Scalar{Kind: KindInt64, Value: int64(1)}))
	require.NoError(t, b.SetScalar(ctx, "s", Scalar{Kind: KindInt64, Value: int64(2)}))

	chain, err := NewChain(ctx, "AB", []Format{a, b})
	require.NoError(t, err)

	got, err := chain.GetScalar(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Value)

	err = chain.DeleteScalar(ctx, "s", false)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ForbiddenDelete))
	require.Equal(t, "cannot delete the scalar: s\nbecause it exists in the earlier: A", err.Error())

	require.NoError(t, chain.SetScalar(ctx, "s", Scalar{Kind: KindInt64, Value: int64(3)}))
	got, err = chain.GetScalar(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Value)

	stillA, err := a.GetScalar(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, int64(1), stillA.Value)
}

func TestChainAxisConsistencyFailsConstruction(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("A")
	b := NewMemory("B")
	require.NoError(t, a.AddAxis(ctx, "cell", []string{"c0", "c1"}))
	require.NoError(t, b.AddAxis(ctx, "cell", []string{"c0", "c2"}))

	_, err := NewChain(ctx, "AB", []Format{a, b})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.InconsistentAxis))
	require.Equal(t, "different entries for the axis: cell", err.Error())
}

func TestChainEmptyConstructionFails(t *testing.T) {
	_, err := NewChain(context.Background(), "empty", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.InvalidChain))
}

func TestChainWriteRequiresWriterLastMember(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("A")
	ro := NewReadOnly(NewMemory("B"))

	chain, err := NewChain(ctx, "AB", []Format{a, ro})
	require.NoError(t, err)
	require.False(t, chain.IsWriter())

	err = chain.SetScalar(ctx, "s", Scalar{Kind: KindInt64, Value: int64(1)})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.InvalidChain))
}

func TestChainImplicitAxisAddOnWrite(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("A")
	b := NewMemory("B")
	require.NoError(t, a.AddAxis(ctx, "cell", []string{"c0", "c1"}))

	chain, err := NewChain(ctx, "AB", []Format{a, b})
	require.NoError(t, err)

	require.NoError(t, chain.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: []int64{5, 6}}))

	has, err := b.HasAxis(ctx, "cell", false)
	require.NoError(t, err)
	require.True(t, has)

	v, err := chain.GetVector(ctx, "cell", "age")
	require.NoError(t, err)
	require.Equal(t, []int64{5, 6}, v.Values)
}

func TestChainVersionCounterSumsMembers(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("A")
	b := NewMemory("B")
	chain, err := NewChain(ctx, "AB", []Format{a, b})
	require.NoError(t, err)

	key := ScalarNamesKey()
	before, err := chain.VersionCounter(ctx, key)
	require.NoError(t, err)

	require.NoError(t, a.SetScalar(ctx, "x", Scalar{Kind: KindInt64, Value: int64(1)}))

	after, err := chain.VersionCounter(ctx, key)
	require.NoError(t, err)
	require.Greater(t, after, before)
}

func TestChainNamesUnion(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("A")
	b := NewMemory("B")
	require.NoError(t, a.SetScalar(ctx, "s1", Scalar{Kind: KindInt64, Value: int64(1)}))
	require.NoError(t, b.SetScalar(ctx, "s2", Scalar{Kind: KindInt64, Value: int64(2)}))

	chain, err := NewChain(ctx, "AB", []Format{a, b})
	require.NoError(t, err)

	names, err := chain.ScalarNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"s1", "s2"}, names)
}
