package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the engine's failure taxonomy. The typed errors below
// wrap these, so callers can branch with errors.Is without losing detail.
var (
	ErrDuplicateNode    = errors.New("duplicate node")
	ErrCyclicDependency = errors.New("cyclic dependency")
	ErrMissingInput     = errors.New("missing input")
	ErrUnknownInput     = errors.New("unknown input")
	ErrDeadlock         = errors.New("deadlock")
)

// DuplicateNodeError reports a second registration of an already registered
// node name.
type DuplicateNodeError struct {
	Name string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node %q", e.Name)
}

func (e *DuplicateNodeError) Unwrap() error { return ErrDuplicateNode }

// CyclicDependencyError reports a dependency cycle. Path holds the offending
// node names in walk order, with the first name repeated at the end.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency"
	}
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

// MissingInputError reports free variables that were not bound before
// evaluation. Names is sorted.
type MissingInputError struct {
	Names []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input for free variable(s): %s", strings.Join(e.Names, ", "))
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// UnknownInputError reports supplied binding keys that are not declared free
// variables of the graph. Names is sorted.
type UnknownInputError struct {
	Names []string
}

func (e *UnknownInputError) Error() string {
	return fmt.Sprintf("unknown input(s): %s", strings.Join(e.Names, ", "))
}

func (e *UnknownInputError) Unwrap() error { return ErrUnknownInput }

// DeadlockError reports a stalled evaluation: unresolved nodes remain but no
// node is ready to run. On a validated acyclic graph with complete bindings
// this indicates dropped results rather than a structural problem.
type DeadlockError struct {
	Unresolved []string
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("deadlock: no runnable nodes, unresolved: %s", strings.Join(e.Unresolved, ", "))
}

func (e *DeadlockError) Unwrap() error { return ErrDeadlock }
