package daf

import (
	"context"
	"testing"

	"github.com/scidaf/daf/errors"
	"github.com/stretchr/testify/require"
)

func TestAdapterAliasesAxisAndWritesThrough(t *testing.T) {
	ctx := context.Background()
	src := NewMemory("anndata")
	adapter := NewAdapter("bridged", src).AliasAxis("obs", "cell").AliasAxis("var", "gene")

	require.NoError(t, adapter.AddAxis(ctx, "obs", []string{"c0", "c1"}))
	require.True(t, adapter.IsWriter())

	has, err := src.HasAxis(ctx, "cell", false)
	require.NoError(t, err)
	require.True(t, has)

	n, err := adapter.AxisLength(ctx, "obs")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestAdapterVectorAliasRoundTrips(t *testing.T) {
	ctx := context.Background()
	src := NewMemory("anndata")
	require.NoError(t, src.AddAxis(ctx, "cell", []string{"c0", "c1"}))

	adapter := NewAdapter("bridged", src).AliasVector("obs", "n_genes", "cell", "n_genes_by_counts")
	require.NoError(t, adapter.SetVector(ctx, "obs", "n_genes", Vector{Kind: KindInt64, Values: []int64{3, 4}}))

	stored, err := src.GetVector(ctx, "cell", "n_genes_by_counts")
	require.NoError(t, err)
	require.Equal(t, []int64{3, 4}, stored.Values)

	v, err := adapter.GetVector(ctx, "obs", "n_genes")
	require.NoError(t, err)
	require.Equal(t, []int64{3, 4}, v.Values)
}

func TestAdapterUnknownAliasSurfacesAliasName(t *testing.T) {
	ctx := context.Background()
	src := NewMemory("anndata")
	adapter := NewAdapter("bridged", src).AliasScalar("ver", "version")

	_, err := adapter.GetScalar(ctx, "ver")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.NotFound))
	require.Equal(t, "missing scalar: ver\nin the daf data: bridged", err.Error())
}
