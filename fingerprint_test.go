package daf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintStableAcrossInsertionOrder(t *testing.T) {
	ctx := context.Background()

	a := NewMemory("a")
	require.NoError(t, a.AddAxis(ctx, "cell", []string{"c0", "c1"}))
	require.NoError(t, a.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(1)}))
	require.NoError(t, a.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: []int64{1, 2}}))

	b := NewMemory("b")
	require.NoError(t, b.AddAxis(ctx, "cell", []string{"c0", "c1"}))
	require.NoError(t, b.SetVector(ctx, "cell", "age", Vector{Kind: KindInt64, Values: []int64{1, 2}}))
	require.NoError(t, b.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(1)}))

	fpA, err := Fingerprint(ctx, a)
	require.NoError(t, err)
	fpB, err := Fingerprint(ctx, b)
	require.NoError(t, err)
	require.Equal(t, fpA, fpB)
}

func TestFingerprintDiffersOnContentChange(t *testing.T) {
	ctx := context.Background()

	a := NewMemory("a")
	require.NoError(t, a.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(1)}))
	fp1, err := Fingerprint(ctx, a)
	require.NoError(t, err)

	require.NoError(t, a.SetScalar(ctx, "version", Scalar{Kind: KindInt64, Value: int64(2)}))
	fp2, err := Fingerprint(ctx, a)
	require.NoError(t, err)

	require.NotEqual(t, fp1, fp2)
}
