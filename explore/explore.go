// Package explore runs a scenario's parallel segment inside a controlled
// interleaving explorer and produces an observed history.
//
// The Explorer abstraction is the one black-box collaborator this design
// allows: this package ships a single concrete implementation,
// ScheduleExplorer, that approximates "every admissible interleaving"
// statistically rather than exhaustively.
package explore

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gomckit/lincheck/contract"
	"github.com/gomckit/lincheck/history"
	"github.com/gomckit/lincheck/scenario"
)

// AbortReason classifies why a scenario execution was aborted instead of
// producing an observed history.
type AbortReason int

const (
	AbortNone AbortReason = iota
	AbortPanicked
	AbortDeadlock
	AbortDataRace
)

func (r AbortReason) String() string {
	switch r {
	case AbortPanicked:
		return "panicked"
	case AbortDeadlock:
		return "explorer-diagnosed deadlock"
	case AbortDataRace:
		return "explorer-diagnosed data race"
	default:
		return "none"
	}
}

// Abort describes why one interleaving of a scenario did not complete.
type Abort struct {
	Reason AbortReason
	// Thread is the parallel thread the abort happened on, or -1 for the
	// init and post segments.
	Thread  int
	OpIndex int
	Message string
}

// AbortError adapts an Abort to the error interface so it can flow through
// an Explorer's run callback.
type AbortError struct{ Abort Abort }

func (e *AbortError) Error() string {
	return fmt.Sprintf("explore: %s on thread %d (op %d): %s", e.Abort.Reason, e.Abort.Thread, e.Abort.OpIndex, e.Abort.Message)
}

// Explorer enumerates admissible interleavings of a scenario's parallel
// segment. Explore invokes run once per interleaving it chooses to examine
// and stops at (returning) the first non-nil error run produces, or returns
// nil once its exploration budget is exhausted without one.
type Explorer interface {
	Explore(run func() error) error
}

// executionMu enforces a "one scenario at a time per process" contract:
// panic capture is per-goroutine recover() here (Go has no process-wide
// panic hook), so concurrent Executor.Explore calls across goroutines would
// otherwise interleave unrelated scenarios' diagnostics.
var executionMu sync.Mutex

// Executor runs one scenario's init/parallel/post phases against a fresh
// concurrent spec instance, under the given Explorer.
type Executor[C any, Op contract.Value, Ret contract.Value] struct {
	Concurrent contract.Concurrent[C, Op, Ret]
	Explorer   Explorer

	mu        sync.Mutex
	lastAbort *Abort
}

// LastAbort returns the Abort recorded by the most recent failing Explore
// call, or nil if the last call succeeded or none has run yet.
func (e *Executor[C, Op, Ret]) LastAbort() *Abort {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAbort
}

// Explore drives the Explorer over sc, invoking check against the observed
// history of every interleaving it runs. It returns the first error
// produced either by an abort or by check.
func (e *Executor[C, Op, Ret]) Explore(sc scenario.Scenario[Op], check func(*history.Observed[Ret]) error) error {
	executionMu.Lock()
	defer executionMu.Unlock()

	e.mu.Lock()
	e.lastAbort = nil
	e.mu.Unlock()

	return e.Explorer.Explore(func() error {
		outcome := e.executeOnce(sc)
		if outcome.Abort != nil {
			e.mu.Lock()
			e.lastAbort = outcome.Abort
			e.mu.Unlock()
			log.Debug().
				Str("reason", outcome.Abort.Reason.String()).
				Int("thread", outcome.Abort.Thread).
				Int("op_index", outcome.Abort.OpIndex).
				Str("message", outcome.Abort.Message).
				Msg("explore: scenario execution aborted")
			return &AbortError{Abort: *outcome.Abort}
		}
		return check(outcome.History)
	})
}

// Outcome is the result of one scenario execution: either an observed
// history or an abort, never both.
type Outcome[Ret any] struct {
	History *history.Observed[Ret]
	Abort   *Abort
}

func (e *Executor[C, Op, Ret]) executeOnce(sc scenario.Scenario[Op]) (out Outcome[Ret]) {
	// The init and post segments run on this goroutine; a panic there is
	// recovered here and reported with Thread -1.
	mainOpIndex := 0
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[Ret]{Abort: &Abort{Reason: AbortPanicked, Thread: -1, OpIndex: mainOpIndex, Message: fmt.Sprint(r)}}
		}
	}()

	c := e.Concurrent.New()

	obs := &history.Observed[Ret]{
		InitResults: make([]Ret, len(sc.Init)),
		PostResults: make([]Ret, len(sc.Post)),
	}
	for i, op := range sc.Init {
		mainOpIndex = i
		obs.InitResults[i] = e.Concurrent.Observe(c, op)
	}

	numThreads := sc.NumThreads()
	obs.ParallelResults = make([][]Ret, numThreads)
	completionSeq := make([][]int64, numThreads)
	for t := 0; t < numThreads; t++ {
		obs.ParallelResults[t] = make([]Ret, len(sc.Parallel[t]))
		completionSeq[t] = make([]int64, len(sc.Parallel[t]))
	}

	var abort atomic.Pointer[Abort]
	var wg sync.WaitGroup

	for t := 0; t < numThreads; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			opIndex := 0
			defer func() {
				if r := recover(); r != nil {
					abort.CompareAndSwap(nil, &Abort{
						Reason:  AbortPanicked,
						Thread:  t,
						OpIndex: opIndex,
						Message: fmt.Sprint(r),
					})
				}
			}()
			for i, op := range sc.Parallel[t] {
				opIndex = i
				ret := e.Concurrent.Observe(c, op)
				obs.ParallelResults[t][i] = ret
				completionSeq[t][i] = time.Now().UnixNano()
			}
		}(t)
	}
	wg.Wait()

	if a := abort.Load(); a != nil {
		return Outcome[Ret]{Abort: a}
	}

	obs.CompletionOrder = completionOrder(completionSeq)

	for i, op := range sc.Post {
		mainOpIndex = i
		obs.PostResults[i] = e.Concurrent.Observe(c, op)
	}

	return Outcome[Ret]{History: obs}
}

// completionOrder flattens the per-thread completion timestamps into the
// real-time completion order of the parallel segment, for rendering rows in
// the order operations actually completed. Each timestamp is read by its own
// worker goroutine with no shared counter, so two completions can land on
// the same nanosecond; ties break on (thread, index) to keep the rendered
// order deterministic without adding any cross-thread synchronization.
func completionOrder(seq [][]int64) []history.Completion {
	type entry struct {
		history.Completion
		ts int64
	}
	var entries []entry
	for t, perThread := range seq {
		for i, s := range perThread {
			entries = append(entries, entry{history.Completion{Thread: t, Index: i}, s})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ts != entries[j].ts {
			return entries[i].ts < entries[j].ts
		}
		if entries[i].Thread != entries[j].Thread {
			return entries[i].Thread < entries[j].Thread
		}
		return entries[i].Index < entries[j].Index
	})
	out := make([]history.Completion, len(entries))
	for i, e := range entries {
		out[i] = e.Completion
	}
	return out
}
