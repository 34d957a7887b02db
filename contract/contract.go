// Package contract defines the dual abstraction a linearizability check is
// built on: a sequential spec (the owning, single-threaded reference) and a
// concurrent spec (the shared, multi-threaded implementation under test)
// sharing an operation alphabet Op and a return alphabet Ret.
package contract

import "github.com/gomckit/lincheck/gen"

// Value is the constraint satisfied by Op and Ret: opaque user-supplied
// types that support equality (comparable) and a short one-line textual
// rendering (String). Go gives equality and cloning for free on ordinary
// value types, so only rendering needs a user-supplied method.
type Value interface {
	comparable
	String() string
}

// Cloner is satisfied by sequential-spec state types. The checker clones S
// at every search node, so S must be cheaply clonable (value semantics).
type Cloner[S any] interface {
	Clone() S
}

// Sequential is the owning, single-threaded reference implementation of a
// data structure: a fresh S is constructed per linearization attempt, and
// Apply mutates it exclusively.
type Sequential[S Cloner[S], Op Value, Ret Value] struct {
	// New constructs a fresh, initial S.
	New func() S
	// Apply mutates s in place and returns the result the real
	// implementation is expected to have produced for op.
	Apply func(s *S, op Op) Ret
}

// Concurrent is the shareable implementation under test: one instance is
// constructed per scenario execution and Observe may be called from
// multiple goroutines concurrently. C is expected to be a type that is
// already safe to share by value across goroutines (typically a pointer to
// a struct holding its own synchronization), the same way a real concurrent
// data structure's constructor hands back a shareable handle.
type Concurrent[C any, Op Value, Ret Value] struct {
	// New constructs a fresh, initial C.
	New func() C
	// Observe invokes one operation against the shared instance c. It must
	// not panic under normal operation; a panic is captured and reported as
	// an abort.
	Observe func(c C, op Op) Ret
}

// Contract binds a concurrent implementation under test to the sequential
// spec that defines its correctness, plus the generator used to build
// scenario operations.
type Contract[S Cloner[S], C any, Op Value, Ret Value] struct {
	Sequential Sequential[S, Op, Ret]
	Concurrent Concurrent[C, Op, Ret]
	Ops        gen.Generator[Op]
}
