package daf

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scidaf/daf/errors"
	"github.com/stretchr/testify/require"
)

func TestLockReadersRunConcurrently(t *testing.T) {
	l := NewLock()
	var wg sync.WaitGroup
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.WithReadLock(context.Background(), func(ctx context.Context) error {
				entered <- struct{}{}
				<-release
				return nil
			}))
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(time.Second):
			t.Fatal("readers did not run concurrently")
		}
	}
	close(release)
	wg.Wait()
}

func TestLockWriterExcludesReaders(t *testing.T) {
	l := NewLock()
	writerIn := make(chan struct{})
	writerRelease := make(chan struct{})
	readerDone := make(chan struct{})

	go func() {
		_ = l.WithWriteLock(context.Background(), func(ctx context.Context) error {
			close(writerIn)
			<-writerRelease
			return nil
		})
	}()

	<-writerIn
	go func() {
		_ = l.WithReadLock(context.Background(), func(ctx context.Context) error {
			close(readerDone)
			return nil
		})
	}()

	select {
	case <-readerDone:
		t.Fatal("reader ran while writer held the lock")
	case <-time.After(50 * time.Millisecond):
	}
	close(writerRelease)

	select {
	case <-readerDone:
	case <-time.After(time.Second):
		t.Fatal("reader never ran after writer released")
	}
}

func TestLockReadLockReentersWhenAlreadyHeld(t *testing.T) {
	l := NewLock()
	ran := false
	err := l.WithReadLock(context.Background(), func(ctx context.Context) error {
		require.True(t, l.HasReadLock(ctx))
		return l.WithReadLock(ctx, func(ctx context.Context) error {
			ran = true
			return nil
		})
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestLockWriteLockReentersWhenAlreadyHeld(t *testing.T) {
	l := NewLock()
	ran := false
	err := l.WithWriteLock(context.Background(), func(ctx context.Context) error {
		require.True(t, l.HasWriteLock(ctx))
		return l.WithWriteLock(ctx, func(ctx context.Context) error {
			ran = true
			return nil
		})
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestLockReadUnderWriteIsAllowed(t *testing.T) {
	l := NewLock()
	ran := false
	err := l.WithWriteLock(context.Background(), func(ctx context.Context) error {
		return l.WithReadLock(ctx, func(ctx context.Context) error {
			ran = true
			return nil
		})
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestLockUpgradeFromReadToWriteIsForbidden(t *testing.T) {
	l := NewLock()
	err := l.WithReadLock(context.Background(), func(ctx context.Context) error {
		return l.WithWriteLock(ctx, func(ctx context.Context) error {
			t.Fatal("write callback should not run")
			return nil
		})
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.LockMisuse))
}

func TestLockUnrelatedCallChainsSerializeAsDistinctHolders(t *testing.T) {
	l := NewLock()
	firstIn := make(chan struct{})
	firstRelease := make(chan struct{})
	secondDone := make(chan struct{})

	go func() {
		_ = l.WithWriteLock(context.Background(), func(ctx context.Context) error {
			close(firstIn)
			<-firstRelease
			return nil
		})
	}()

	<-firstIn
	go func() {
		// A second, unrelated call chain starting fresh from
		// context.Background() must not be recognized as the same
		// holder and must block until the first releases.
		_ = l.WithWriteLock(context.Background(), func(ctx context.Context) error {
			close(secondDone)
			return nil
		})
	}()

	select {
	case <-secondDone:
		t.Fatal("unrelated write acquisition ran concurrently with an unreleased one")
	case <-time.After(50 * time.Millisecond):
	}
	close(firstRelease)

	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("second acquisition never ran after the first released")
	}
}

func TestAcquireWriteForHandleThenManualRelease(t *testing.T) {
	l := NewLock()
	_, release, err := l.AcquireWriteForHandle(context.Background())
	require.NoError(t, err)

	blocked := make(chan struct{})
	go func() {
		_ = l.WithReadLock(context.Background(), func(ctx context.Context) error {
			close(blocked)
			return nil
		})
	}()

	select {
	case <-blocked:
		t.Fatal("read lock acquired while handle held the write lock")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("read lock never acquired after release")
	}
}

func TestAcquireWriteForHandleReentersUnderExistingWriteLock(t *testing.T) {
	l := NewLock()
	err := l.WithWriteLock(context.Background(), func(ctx context.Context) error {
		heldCtx, release, err := l.AcquireWriteForHandle(ctx)
		require.NoError(t, err)
		require.True(t, l.HasWriteLock(heldCtx))
		release()
		return nil
	})
	require.NoError(t, err)
}

func TestAcquireWriteForHandleForbidsUpgradeFromRead(t *testing.T) {
	l := NewLock()
	err := l.WithReadLock(context.Background(), func(ctx context.Context) error {
		_, _, err := l.AcquireWriteForHandle(ctx)
		return err
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.LockMisuse))
}

func TestGuardReleaseIsIdempotentButChecked(t *testing.T) {
	unlocked := 0
	g := NewGuard(func() { unlocked++ })

	require.NoError(t, g.Release())
	require.Equal(t, 1, unlocked)

	err := g.Release()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.LockMisuse))
	require.Equal(t, 1, unlocked)
}

func TestGuardWithNilUnlockReleasesWithoutPanic(t *testing.T) {
	g := NewGuard(nil)
	require.NoError(t, g.Release())
}
