// Package harness drives the generate -> execute -> check -> shrink -> report
// loop a linearizability test runs, in the image of prop.ForAll: it owns the
// *testing.T integration, the scenario-generation loop, and the failure
// report a developer actually reads.
package harness

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/gomckit/lincheck/contract"
	"github.com/gomckit/lincheck/explore"
	"github.com/gomckit/lincheck/gen"
	"github.com/gomckit/lincheck/history"
	"github.com/gomckit/lincheck/linearize"
	"github.com/gomckit/lincheck/scenario"
)

// FailureKind classifies why Verify stopped on a given scenario.
type FailureKind int

const (
	// FailureNone indicates no failure: every explored interleaving of
	// every generated scenario linearized.
	FailureNone FailureKind = iota
	// FailureNonLinearizable means at least one explored interleaving of a
	// scenario admitted no linearization.
	FailureNonLinearizable
	// FailurePanic means Concurrent.Observe panicked during execution.
	FailurePanic
	// FailureExplorerDiagnosed means the Explorer itself aborted an
	// interleaving (deadlock or data race diagnosis), independent of
	// linearizability.
	FailureExplorerDiagnosed
	// FailureGenerationExhausted means scenario generation could not
	// produce a non-empty scenario within its retry budget.
	FailureGenerationExhausted
)

func (k FailureKind) String() string {
	switch k {
	case FailureNonLinearizable:
		return "non-linearizable"
	case FailurePanic:
		return "panic in Observe"
	case FailureExplorerDiagnosed:
		return "explorer-diagnosed abort"
	case FailureGenerationExhausted:
		return "generation exhausted"
	default:
		return "none"
	}
}

// Failure is the structured outcome of one failing scenario check, the raw
// material both Format and SaveArtifact render from.
type Failure[Op, Ret any] struct {
	Kind     FailureKind
	Scenario scenario.Scenario[Op]
	Observed *history.Observed[Ret]
	Abort    *explore.Abort
	Reason   string
}

// reportErr adapts a Failure to the error interface so it can flow out of an
// Explorer's run callback and be unwrapped by runOnce.
type reportErr[Op, Ret any] struct {
	failure Failure[Op, Ret]
}

func (e *reportErr[Op, Ret]) Error() string { return e.failure.Reason }

// Verify runs cfg.Examples generated scenarios of con against the
// concurrency contract con, shrinking and reporting the first failure found
// exactly as prop.ForAll does for a plain property. t.Fatalf is called on
// failure; Verify itself never panics. With cfg.NumThreads == 1 it delegates
// to VerifySequential, which reports the first mismatch without shrinking.
func Verify[S contract.Cloner[S], C any, Op contract.Value, Ret contract.Value](t *testing.T, con contract.Contract[S, C, Op, Ret], cfg Config) {
	t.Helper()
	cfg = cfg.normalize()

	if cfg.NumThreads == 1 {
		VerifySequential(t, con, cfg)
		return
	}

	seed := cfg.effectiveSeed()
	r := rand.New(rand.NewSource(seed))
	gen.SetShrinkStrategy(cfg.ShrinkStrat)

	t.Logf("[lincheck] seed=%d examples=%d numthreads=%d numops=%d trials=%d strategy=%s",
		seed, cfg.Examples, cfg.NumThreads, cfg.NumOps, cfg.Trials, cfg.ShrinkStrat)

	scenarioGen := scenario.Gen(con.Ops, scenario.Config{NumThreads: cfg.NumThreads, NumOps: cfg.NumOps})
	checker := &linearize.Checker[S, Op, Ret]{Sequential: con.Sequential}
	explorer := explore.ScheduleExplorer{Trials: cfg.Trials}

	for i := 0; i < cfg.Examples; i++ {
		sc, shrink := scenarioGen.Generate(r, gen.Size{})
		name := fmt.Sprintf("ex#%d", i+1)

		if sc.TotalOps() == 0 {
			t.Fatalf("[lincheck] %s\nseed=%d examples_run=%d\ncould not sample a non-empty scenario within the retry budget",
				FailureGenerationExhausted, seed, i+1)
			return
		}

		var failure *Failure[Op, Ret]
		passed := t.Run(name, func(st *testing.T) {
			failure = runOnce(st, con, checker, explorer, sc)
		})
		if passed {
			continue
		}

		minSc := sc
		minFailure := failure
		steps := 0
		acceptedPrev := true

		for steps < cfg.MaxShrink {
			next, ok := shrink(acceptedPrev)
			if !ok {
				break
			}
			steps++
			sname := fmt.Sprintf("%s/shrink#%d", name, steps)

			var nextFailure *Failure[Op, Ret]
			stillFails := !t.Run(sname, func(st *testing.T) {
				nextFailure = runOnce(st, con, checker, explorer, next)
			})
			if stillFails {
				minSc, minFailure = next, nextFailure
				acceptedPrev = true
			} else {
				acceptedPrev = false
			}
		}

		t.Fatalf("[lincheck] %s\nseed=%d examples_run=%d shrunk_steps=%d\n%s",
			minFailure.Kind, seed, i+1, steps, Format(minSc, minFailure))
		return
	}
}

// runOnce executes sc through the explorer and records the first failing
// interleaving it finds, if any.
func runOnce[S contract.Cloner[S], C any, Op contract.Value, Ret contract.Value](
	t *testing.T,
	con contract.Contract[S, C, Op, Ret],
	checker *linearize.Checker[S, Op, Ret],
	explorer explore.Explorer,
	sc scenario.Scenario[Op],
) *Failure[Op, Ret] {
	t.Helper()

	if sc.TotalOps() == 0 {
		t.Fatalf("[lincheck] empty scenario reached runOnce")
		return nil
	}

	executor := &explore.Executor[C, Op, Ret]{Concurrent: con.Concurrent, Explorer: explorer}
	err := executor.Explore(sc, func(obs *history.Observed[Ret]) error {
		result := checker.Check(sc, obs)
		if result.Linearizable {
			return nil
		}
		return &reportErr[Op, Ret]{failure: Failure[Op, Ret]{
			Kind:     FailureNonLinearizable,
			Scenario: sc,
			Observed: obs,
			Reason:   result.Reason,
		}}
	})
	if err == nil {
		return nil
	}

	var rep *reportErr[Op, Ret]
	if errors.As(err, &rep) {
		t.Error(rep.failure.Reason)
		return &rep.failure
	}

	var abortErr *explore.AbortError
	if errors.As(err, &abortErr) {
		kind := FailureExplorerDiagnosed
		if abortErr.Abort.Reason == explore.AbortPanicked {
			kind = FailurePanic
		}
		f := &Failure[Op, Ret]{Kind: kind, Scenario: sc, Abort: &abortErr.Abort, Reason: abortErr.Error()}
		t.Error(f.Reason)
		return f
	}

	t.Error(err.Error())
	return &Failure[Op, Ret]{Kind: FailureNonLinearizable, Scenario: sc, Reason: err.Error()}
}

// VerifySequential handles the degenerate cfg.NumThreads == 1 case (Verify
// routes here after normalizing 0 to 1): with a single thread there is exactly one possible interleaving,
// so linearizability reduces to trace equality between the concurrent and
// sequential specs, and no Explorer or search is needed at all.
func VerifySequential[S contract.Cloner[S], C any, Op contract.Value, Ret contract.Value](t *testing.T, con contract.Contract[S, C, Op, Ret], cfg Config) {
	t.Helper()
	cfg = cfg.normalize()
	seed := cfg.effectiveSeed()
	r := rand.New(rand.NewSource(seed))

	t.Logf("[lincheck] seed=%d examples=%d (sequential mode)", seed, cfg.Examples)

	opsGen := gen.SliceOf(con.Ops, gen.Size{Min: 1, Max: cfg.NumOps})
	for i := 0; i < cfg.Examples; i++ {
		ops, _ := opsGen.Generate(r, gen.Size{})
		name := fmt.Sprintf("ex#%d", i+1)

		t.Run(name, func(st *testing.T) {
			opIndex := 0
			defer func() {
				if r := recover(); r != nil {
					st.Fatalf("[lincheck] %s at op %d (%s): %v", FailurePanic, opIndex, ops[opIndex], r)
				}
			}()
			s := con.Sequential.New()
			c := con.Concurrent.New()
			for i, op := range ops {
				opIndex = i
				want := con.Sequential.Apply(&s, op)
				got := con.Concurrent.Observe(c, op)
				if want != got {
					st.Fatalf("[lincheck] trace mismatch at op %d (%s): sequential=%s concurrent=%s", i, op, want, got)
				}
			}
		})
	}
}
