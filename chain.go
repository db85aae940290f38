package daf

import (
	"context"
	"fmt"

	"github.com/scidaf/daf/errors"
	"golang.org/x/exp/slices"
)

// Chain is an ordered overlay of member datasets d[0],...,d[n-1] (spec.md
// §4.5/C6). Reads resolve "last writer wins": the first member found
// walking from d[n-1] back to d[0]. Writes always target d[n-1]. Chain is
// itself a Format, so chains of chains and chains of views compose
// uniformly (spec.md §9).
type Chain struct {
	name    string
	lock    *Lock
	members []Format

	header string
	footer string
}

// NewChain builds a chain over members (in read-resolution order, d[0]
// first). Construction fails if members is empty, or if any axis name
// appears in more than one member with differing entry sequences
// (spec.md §4.5 "Axis consistency", §8 invariant 6 - this check runs
// before any member is read beyond axis enumeration, no other data is
// touched).
func NewChain(ctx context.Context, name string, members []Format) (*Chain, error) {
	if len(members) == 0 {
		return nil, errors.New(errors.InvalidChain, fmt.Sprintf("empty chain: %s", name))
	}

	if err := checkAxisConsistency(ctx, members, nil); err != nil {
		return nil, err
	}

	return &Chain{name: name, lock: NewLock(), members: members}, nil
}

// checkAxisConsistency verifies that every axis name shared across members
// has identical entry sequences, skipping any axis in skip (used by concat.go
// to exclude the one axis that is expected to grow). Reused by both Chain
// construction (spec.md §8 invariant 6) and Concat (SPEC_FULL.md §4.8).
func checkAxisConsistency(ctx context.Context, members []Format, skip map[string]bool) error {
	seen := make(map[string][]string)
	for _, m := range members {
		axisNames, err := m.AxisNames(ctx)
		if err != nil {
			return err
		}
		for _, axis := range axisNames {
			if skip[axis] {
				continue
			}
			entries, err := m.AxisEntries(ctx, axis)
			if err != nil {
				return err
			}
			if prior, ok := seen[axis]; ok {
				if !slices.Equal(prior, entries) {
					return errors.New(errors.InconsistentAxis, fmt.Sprintf("different entries for the axis: %s", axis))
				}
			} else {
				seen[axis] = entries
			}
		}
	}
	return nil
}

func (c *Chain) last() Format { return c.members[len(c.members)-1] }

// writer returns the last member, failing if it cannot accept writes
// (spec.md §7 InvalidChain "write chain whose last member is not a
// writer").
func (c *Chain) writer() (Format, error) {
	last := c.last()
	if !last.IsWriter() {
		return nil, errors.New(errors.InvalidChain, fmt.Sprintf("cannot write to the daf data: %s\nbecause its last chain member: %s is not a writer", c.name, last.Name()))
	}
	return last, nil
}

// ID reports the write target's ID (SPEC_FULL.md §3.2: "for a chain, the
// ID of the write target, i.e. the last member") - a chain never mints
// its own identity.
func (c *Chain) ID() string     { return c.last().ID() }
func (c *Chain) Name() string   { return c.name }
func (c *Chain) Lock() *Lock    { return c.lock }
func (c *Chain) IsWriter() bool { return c.last().IsWriter() }

func (c *Chain) DescriptionHeader() string { return c.header }
func (c *Chain) DescriptionFooter() string { return c.footer }

// SetDescription sets the chain's own free-text header/footer, distinct
// from any member's.
func (c *Chain) SetDescription(header, footer string) {
	c.header = header
	c.footer = footer
}

// WithChainWriteLock acquires a chain-wide snapshot by recursively taking
// the write lock of every member in order, d[0] first, then runs f
// (spec.md §5 "Users requiring a chain-wide snapshot must take a write
// lock on the chain, which recursively takes write locks on every member
// in order").
func (c *Chain) WithChainWriteLock(ctx context.Context, f func(context.Context) error) error {
	return c.lockMembers(ctx, 0, f)
}

func (c *Chain) lockMembers(ctx context.Context, i int, f func(context.Context) error) error {
	if i == len(c.members) {
		return f(ctx)
	}
	return c.members[i].Lock().WithWriteLock(ctx, func(ctx context.Context) error {
		return c.lockMembers(ctx, i+1, f)
	})
}

// VersionCounter sums every member's counter for key, so any change
// anywhere invalidates derived caches built against the chain (spec.md
// §4.5 "Version counters").
func (c *Chain) VersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	var sum uint32
	for _, m := range c.members {
		v, err := m.VersionCounter(ctx, key)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func (c *Chain) IncrementVersionCounter(ctx context.Context, key DataKey) (uint32, error) {
	last, err := c.writer()
	if err != nil {
		return 0, err
	}
	return last.IncrementVersionCounter(ctx, key)
}

// --- Scalars ---

func (c *Chain) HasScalar(ctx context.Context, name string) (bool, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasScalar(ctx, name)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

func (c *Chain) GetScalar(ctx context.Context, name string) (Scalar, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasScalar(ctx, name)
		if err != nil {
			return Scalar{}, err
		}
		if has {
			return c.members[i].GetScalar(ctx, name)
		}
	}
	return Scalar{}, errors.New(errors.NotFound, fmt.Sprintf("missing scalar: %s\nin the daf data: %s", name, c.name))
}

func (c *Chain) SetScalar(ctx context.Context, name string, value Scalar) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	return last.SetScalar(ctx, name, value)
}

// firstEarlierHolder scans earlier members (d[0..n-2]) for the first one
// holding the artifact, returning its name for the ForbiddenDelete
// message (spec.md §4.5 "Deletion policy").
func (c *Chain) firstEarlierHolder(has func(m Format) (bool, error)) (string, bool, error) {
	for i := 0; i < len(c.members)-1; i++ {
		ok, err := has(c.members[i])
		if err != nil {
			return "", false, err
		}
		if ok {
			return c.members[i].Name(), true, nil
		}
	}
	return "", false, nil
}

func (c *Chain) DeleteScalar(ctx context.Context, name string, forSet bool) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	if !forSet {
		holder, blocked, err := c.firstEarlierHolder(func(m Format) (bool, error) { return m.HasScalar(ctx, name) })
		if err != nil {
			return err
		}
		if blocked {
			return errors.New(errors.ForbiddenDelete, fmt.Sprintf("cannot delete the scalar: %s\nbecause it exists in the earlier: %s", name, holder))
		}
	}
	return last.DeleteScalar(ctx, name, forSet)
}

func (c *Chain) ScalarNames(ctx context.Context) ([]string, error) {
	set := make(map[string]struct{})
	for _, m := range c.members {
		names, err := m.ScalarNames(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

// --- Axes ---

func (c *Chain) HasAxis(ctx context.Context, axis string, forChange bool) (bool, error) {
	if forChange {
		return c.last().HasAxis(ctx, axis, true)
	}
	for _, m := range c.members {
		has, err := m.HasAxis(ctx, axis, false)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

func (c *Chain) AddAxis(ctx context.Context, axis string, entries []string) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	return last.AddAxis(ctx, axis, entries)
}

func (c *Chain) DeleteAxis(ctx context.Context, axis string) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	holder, blocked, err := c.firstEarlierHolder(func(m Format) (bool, error) { return m.HasAxis(ctx, axis, false) })
	if err != nil {
		return err
	}
	if blocked {
		return errors.New(errors.ForbiddenDelete, fmt.Sprintf("cannot delete the axis: %s\nbecause it exists in the earlier: %s", axis, holder))
	}
	return last.DeleteAxis(ctx, axis)
}

func (c *Chain) findAxisHolder(ctx context.Context, axis string) (Format, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasAxis(ctx, axis, false)
		if err != nil {
			return nil, err
		}
		if has {
			return c.members[i], nil
		}
	}
	return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, c.name))
}

func (c *Chain) AxisLength(ctx context.Context, axis string) (int, error) {
	m, err := c.findAxisHolder(ctx, axis)
	if err != nil {
		return 0, err
	}
	return m.AxisLength(ctx, axis)
}

func (c *Chain) AxisEntries(ctx context.Context, axis string) ([]string, error) {
	m, err := c.findAxisHolder(ctx, axis)
	if err != nil {
		return nil, err
	}
	return m.AxisEntries(ctx, axis)
}

func (c *Chain) AxisNames(ctx context.Context) ([]string, error) {
	set := make(map[string]struct{})
	for _, m := range c.members {
		names, err := m.AxisNames(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

// ensureAxisOnWriter implicitly adds axis to the last member, using the
// chain-resolved entries, if the last member doesn't already have it
// (spec.md §4.5 "Writes").
func (c *Chain) ensureAxisOnWriter(ctx context.Context, last Format, axis string) error {
	has, err := last.HasAxis(ctx, axis, true)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	entries, err := c.AxisEntries(ctx, axis)
	if err != nil {
		return err
	}
	return last.AddAxis(ctx, axis, entries)
}

// --- Vectors ---

func (c *Chain) HasVector(ctx context.Context, axis, name string) (bool, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasVector(ctx, axis, name)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

func (c *Chain) GetVector(ctx context.Context, axis, name string) (Vector, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasVector(ctx, axis, name)
		if err != nil {
			return Vector{}, err
		}
		if has {
			return c.members[i].GetVector(ctx, axis, name)
		}
	}
	return Vector{}, errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, c.name))
}

func (c *Chain) SetVector(ctx context.Context, axis, name string, value Vector) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	if err := c.ensureAxisOnWriter(ctx, last, axis); err != nil {
		return err
	}
	return last.SetVector(ctx, axis, name, value)
}

func (c *Chain) DeleteVector(ctx context.Context, axis, name string, forSet bool) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	if !forSet {
		holder, blocked, err := c.firstEarlierHolder(func(m Format) (bool, error) { return m.HasVector(ctx, axis, name) })
		if err != nil {
			return err
		}
		if blocked {
			return errors.New(errors.ForbiddenDelete, fmt.Sprintf("cannot delete the vector: %s\nfor the axis: %s\nbecause it exists in the earlier: %s", name, axis, holder))
		}
	}
	return last.DeleteVector(ctx, axis, name, forSet)
}

func (c *Chain) VectorNames(ctx context.Context, axis string) ([]string, error) {
	set := make(map[string]struct{})
	for _, m := range c.members {
		has, err := m.HasAxis(ctx, axis, false)
		if err != nil {
			return nil, err
		}
		if !has {
			continue
		}
		names, err := m.VectorNames(ctx, axis)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

func (c *Chain) GetEmptyDenseVector(ctx context.Context, axis, name string, kind ElementKind) (*VectorHandle, error) {
	last, err := c.writer()
	if err != nil {
		return nil, err
	}
	if err := c.ensureAxisOnWriter(ctx, last, axis); err != nil {
		return nil, err
	}
	return last.GetEmptyDenseVector(ctx, axis, name, kind)
}

func (c *Chain) GetEmptySparseVector(ctx context.Context, axis, name string, kind ElementKind, nnz int, indKind ElementKind) (*SparseVectorHandle, error) {
	last, err := c.writer()
	if err != nil {
		return nil, err
	}
	if err := c.ensureAxisOnWriter(ctx, last, axis); err != nil {
		return nil, err
	}
	return last.GetEmptySparseVector(ctx, axis, name, kind, nnz, indKind)
}

// --- Matrices ---

func (c *Chain) HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasMatrix(ctx, rows, cols, name, forRelayout)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

func (c *Chain) GetMatrix(ctx context.Context, rows, cols, name string, major MajorAxis) (Matrix, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasMatrix(ctx, rows, cols, name, false)
		if err != nil {
			return Matrix{}, err
		}
		if has {
			return c.members[i].GetMatrix(ctx, rows, cols, name, major)
		}
	}
	return Matrix{}, errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, c.name))
}

func (c *Chain) SetMatrix(ctx context.Context, rows, cols, name string, value Matrix) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	if err := c.ensureAxisOnWriter(ctx, last, rows); err != nil {
		return err
	}
	if err := c.ensureAxisOnWriter(ctx, last, cols); err != nil {
		return err
	}
	return last.SetMatrix(ctx, rows, cols, name, value)
}

func (c *Chain) DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error {
	last, err := c.writer()
	if err != nil {
		return err
	}
	if !forSet {
		holder, blocked, err := c.firstEarlierHolder(func(m Format) (bool, error) { return m.HasMatrix(ctx, rows, cols, name, false) })
		if err != nil {
			return err
		}
		if blocked {
			return errors.New(errors.ForbiddenDelete, fmt.Sprintf("cannot delete the matrix: %s\nfor the rows: %s\nand the columns: %s\nbecause it exists in the earlier: %s", name, rows, cols, holder))
		}
	}
	return last.DeleteMatrix(ctx, rows, cols, name, forSet)
}

func (c *Chain) MatrixNames(ctx context.Context, rows, cols string) ([]string, error) {
	set := make(map[string]struct{})
	for _, m := range c.members {
		hasRows, err := m.HasAxis(ctx, rows, false)
		if err != nil {
			return nil, err
		}
		hasCols, err := m.HasAxis(ctx, cols, false)
		if err != nil {
			return nil, err
		}
		if !hasRows || !hasCols {
			continue
		}
		names, err := m.MatrixNames(ctx, rows, cols)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

func (c *Chain) GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis) (*MatrixHandle, error) {
	last, err := c.writer()
	if err != nil {
		return nil, err
	}
	if err := c.ensureAxisOnWriter(ctx, last, rows); err != nil {
		return nil, err
	}
	if err := c.ensureAxisOnWriter(ctx, last, cols); err != nil {
		return nil, err
	}
	return last.GetEmptyDenseMatrix(ctx, rows, cols, name, kind, major)
}

func (c *Chain) GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind ElementKind, major MajorAxis, nnz int, indKind ElementKind) (*SparseMatrixHandle, error) {
	last, err := c.writer()
	if err != nil {
		return nil, err
	}
	if err := c.ensureAxisOnWriter(ctx, last, rows); err != nil {
		return nil, err
	}
	if err := c.ensureAxisOnWriter(ctx, last, cols); err != nil {
		return nil, err
	}
	return last.GetEmptySparseMatrix(ctx, rows, cols, name, kind, major, nnz, indKind)
}

func (c *Chain) Relayout(ctx context.Context, rows, cols, name string, from MajorAxis) (Matrix, error) {
	for i := len(c.members) - 1; i >= 0; i-- {
		has, err := c.members[i].HasMatrix(ctx, rows, cols, name, true)
		if err != nil {
			return Matrix{}, err
		}
		if has {
			return c.members[i].Relayout(ctx, rows, cols, name, from)
		}
	}
	return Matrix{}, errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, c.name))
}
