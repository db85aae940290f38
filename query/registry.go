package query

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/scidaf/daf/errors"
)

// OpKind discriminates the two shapes a registered operation can take
// (spec.md §4.7): an element-wise map that preserves shape, or a
// reduction that collapses one dimension.
type OpKind int

const (
	Eltwise OpKind = iota
	Reduction
)

func (k OpKind) String() string {
	if k == Reduction {
		return "reduction"
	}
	return "eltwise"
}

// Constructor builds an Operation from the parameters bound in an
// OpStage's parameter list.
type Constructor func(params map[string]interface{}) (Operation, error)

type registration struct {
	kind Constructor
	op   OpKind
	site string
}

// Registry is a process-wide table of named operations, keyed by name
// regardless of kind: a registration from the same call site as an
// existing entry is a no-op (package init() functions commonly run more
// than once in tests), but a different call site registering the same
// name is a conflict and is rejected.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// DefaultRegistry is the registry consulted by Evaluate when a query
// doesn't carry its own. Built-in operations register themselves here.
var DefaultRegistry = NewRegistry()

// Register adds name to r. Re-registering the same name from the same
// source line is idempotent; re-registering it from a different source
// line is a conflict and returns a QueryParseError-coded error.
func (r *Registry) Register(kind OpKind, name string, ctor Constructor) error {
	_, file, line, _ := runtime.Caller(1)
	site := fmt.Sprintf("%s:%d", file, line)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		if existing.site == site && existing.op == kind {
			return nil
		}
		return errors.New(errors.QueryParseError,
			fmt.Sprintf("conflicting registrations for the %s operation: %s", kind, name))
	}
	r.entries[name] = registration{kind: ctor, op: kind, site: site}
	return nil
}

// Lookup resolves name to a Constructor and its kind, or reports that
// no operation by that name has been registered.
func (r *Registry) Lookup(name string) (Constructor, OpKind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	if !ok {
		return nil, 0, errors.New(errors.UnknownOperation, fmt.Sprintf("unknown operation: %s", name))
	}
	return reg.kind, reg.op, nil
}
