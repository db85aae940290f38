package daf

import (
	"context"
	"sync"

	"github.com/scidaf/daf/errors"
)

// lockMode records whether the current logical call chain is holding a
// dataset's lock for reading or for writing.
type lockMode uint8

const (
	modeRead lockMode = iota
	modeWrite
)

// Lock is a reentrant readers-writer lock, one per dataset (spec.md
// §4.2/C2). Reentrancy is tracked by threading a token through
// context.Context rather than by goroutine-id introspection: the first
// call into WithReadLock/WithWriteLock for a given Lock actually acquires
// the underlying sync.RWMutex and derives a child context recording that
// fact; a nested call that is handed that child context (directly, or via
// any ctx derived from it) recognizes it already holds the lock and never
// touches the mutex again. Two unrelated call chains, even on the same
// goroutine, each starting from context.Background() are correctly
// treated as distinct holders. See SPEC_FULL.md §5 for the rationale.
type Lock struct {
	mu sync.RWMutex
}

// NewLock returns a ready-to-use Lock.
func NewLock() *Lock {
	return &Lock{}
}

func (l *Lock) heldMode(ctx context.Context) (lockMode, bool) {
	v := ctx.Value(l)
	if v == nil {
		return 0, false
	}
	return v.(lockMode), true
}

// HasReadLock reports whether the current call chain already holds this
// lock, for reading or writing, without blocking.
func (l *Lock) HasReadLock(ctx context.Context) bool {
	_, ok := l.heldMode(ctx)
	return ok
}

// HasWriteLock reports whether the current call chain already holds this
// lock for writing, without blocking.
func (l *Lock) HasWriteLock(ctx context.Context) bool {
	mode, ok := l.heldMode(ctx)
	return ok && mode == modeWrite
}

// WithReadLock runs f with a read lock held. If the current call chain
// already holds this lock (for reading or for writing), f runs directly
// without re-acquiring anything - holding a write lock already implies
// read access. The lock is always released on every exit path, including
// a panic propagating out of f, except in the reentrant case where
// release is the outer holder's responsibility.
func (l *Lock) WithReadLock(ctx context.Context, f func(context.Context) error) error {
	if _, ok := l.heldMode(ctx); ok {
		return f(ctx)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return f(context.WithValue(ctx, l, modeRead))
}

// WithWriteLock runs f with the write lock held. Reentrant write
// acquisition by the same call chain succeeds and runs f directly.
// Attempting to acquire a write lock while the current call chain holds
// only a read lock on this same Lock is a programming error: it returns
// errors.LockMisuse without calling f and without blocking (spec.md §4.2
// "upgrade is forbidden").
func (l *Lock) WithWriteLock(ctx context.Context, f func(context.Context) error) error {
	if mode, ok := l.heldMode(ctx); ok {
		if mode == modeWrite {
			return f(ctx)
		}
		return errors.New(errors.LockMisuse, "cannot acquire write lock: current call chain already holds only a read lock")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return f(context.WithValue(ctx, l, modeWrite))
}

// AcquireWriteForHandle manually acquires the write lock for use across two
// separate calls: an allocation call that returns a *Handle, and a later
// Seal call on that handle. Unlike WithWriteLock it does not release the
// lock on return - the caller must call the returned release func exactly
// once, from the handle's Seal. If the current call chain already holds
// this lock for writing, release is a no-op and heldCtx is ctx itself; if it
// holds only a read lock, this returns errors.LockMisuse without blocking.
func (l *Lock) AcquireWriteForHandle(ctx context.Context) (heldCtx context.Context, release func(), err error) {
	if mode, ok := l.heldMode(ctx); ok {
		if mode == modeWrite {
			return ctx, func() {}, nil
		}
		return nil, nil, errors.New(errors.LockMisuse, "cannot acquire write lock: current call chain already holds only a read lock")
	}
	l.mu.Lock()
	return context.WithValue(ctx, l, modeWrite), func() { l.mu.Unlock() }, nil
}

// Guard is a manually-released lock handle used by the empty-allocator
// protocol (format.go), where the handle returned by GetEmptyDense/
// GetEmptySparse must keep the dataset write-locked across a later,
// separate call to seal it. Guard wraps the release func returned by
// AcquireWriteForHandle; Release is idempotent-but-checked:
// calling it a second time returns errors.LockMisuse rather than silently
// succeeding, matching spec.md §7's "unmatched unlock" error kind.
type Guard struct {
	mu       sync.Mutex
	released bool
	unlock   func()
}

// NewGuard returns a Guard bound to an already-held write lock, released
// via unlock when the guard is released. unlock may be nil for a
// reentrant acquisition that has nothing to release.
func NewGuard(unlock func()) *Guard {
	return &Guard{unlock: unlock}
}

// Release marks the guard consumed and releases the underlying write lock
// acquisition, if any. It must be called exactly once, when the
// empty-allocator handle is sealed or abandoned.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return errors.New(errors.LockMisuse, "empty-allocator guard released more than once")
	}
	g.released = true
	if g.unlock != nil {
		g.unlock()
	}
	return nil
}
