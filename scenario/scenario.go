// Package scenario generates and shrinks the multi-threaded test cases a
// linearizability check is built from: an init segment, a parallel segment
// (one op sequence per worker thread), and a post segment.
package scenario

import (
	"fmt"
	"math/rand"

	"github.com/gomckit/lincheck/gen"
)

// Scenario is a concrete input to one check: init ops + per-thread parallel
// ops + post ops.
type Scenario[Op any] struct {
	Init     []Op
	Parallel [][]Op
	Post     []Op
}

// NumThreads reports len(Parallel).
func (s Scenario[Op]) NumThreads() int { return len(s.Parallel) }

// TotalOps reports the total number of ops across every segment.
func (s Scenario[Op]) TotalOps() int {
	n := len(s.Init) + len(s.Post)
	for _, p := range s.Parallel {
		n += len(p)
	}
	return n
}

// Clone returns a deep copy of s.
func (s Scenario[Op]) Clone() Scenario[Op] {
	out := Scenario[Op]{
		Init: append([]Op(nil), s.Init...),
		Post: append([]Op(nil), s.Post...),
	}
	out.Parallel = make([][]Op, len(s.Parallel))
	for i, p := range s.Parallel {
		out.Parallel[i] = append([]Op(nil), p...)
	}
	return out
}

// Config parameterizes scenario generation.
type Config struct {
	// NumThreads is the number of parallel worker sequences to generate.
	// Must be >= 1; 1 degenerates to a trace-equality check.
	NumThreads int
	// NumOps is the soft total op budget across all segments.
	NumOps int
	// MaxEmptyRetries bounds how many times Gen resamples a scenario that
	// came out with zero total ops before giving up.
	MaxEmptyRetries int
}

func (c Config) normalize() Config {
	if c.NumThreads < 1 {
		c.NumThreads = 1
	}
	if c.NumOps < 1 {
		c.NumOps = 1
	}
	if c.MaxEmptyRetries <= 0 {
		c.MaxEmptyRetries = 20
	}
	return c
}

// ErrGenerationExhausted describes the case where no non-empty scenario
// could be sampled within Config.MaxEmptyRetries attempts. Gen's Generate
// has no error result and does not return it: in that case it returns an
// empty scenario (TotalOps() == 0) instead.
type ErrGenerationExhausted struct{ Retries int }

func (e *ErrGenerationExhausted) Error() string {
	return fmt.Sprintf("scenario: generation exhausted after %d empty retries", e.Retries)
}

// Gen builds a Generator[Scenario[Op]] out of an op generator: sample a
// total length, partition it into init/parallel/post biased toward a
// nonempty parallel section when NumThreads >= 2, then sample each op
// independently.
func Gen[Op any](ops gen.Generator[Op], cfg Config) gen.Generator[Scenario[Op]] {
	cfg = cfg.normalize()
	return gen.From(func(r *rand.Rand, sz gen.Size) (Scenario[Op], gen.Shrinker[Scenario[Op]]) {
		if r == nil {
			r = rand.New(rand.NewSource(rand.Int63()))
		}
		var sc Scenario[Op]
		var elemShrinks shrinkLayout[Op]
		for attempt := 0; attempt < cfg.MaxEmptyRetries; attempt++ {
			sc, elemShrinks = sampleScenario(r, ops, cfg)
			if sc.TotalOps() > 0 {
				return sc, newShrinker(sc, elemShrinks, ops, cfg)
			}
		}
		// every attempt produced an empty scenario: return it with a
		// shrinker that never proposes a candidate; the harness checks
		// TotalOps()==0 itself to decide on FailureGenerationExhausted.
		return sc, func(bool) (Scenario[Op], bool) { return Scenario[Op]{}, false }
	})
}

// shrinkLayout retains the per-position shrinker captured at generation time
// for every op in every segment, so tactic (2) (replace with something
// simpler) can delegate to the op strategy's own shrinker.
type shrinkLayout[Op any] struct {
	init     []gen.Shrinker[Op]
	parallel [][]gen.Shrinker[Op]
	post     []gen.Shrinker[Op]
}

func sampleScenario[Op any](r *rand.Rand, ops gen.Generator[Op], cfg Config) (Scenario[Op], shrinkLayout[Op]) {
	n := 1
	if cfg.NumOps > 1 {
		n = 1 + r.Intn(cfg.NumOps)
	}

	initLen, parallelLens, postLen := partition(r, n, cfg.NumThreads)

	var sc Scenario[Op]
	var layout shrinkLayout[Op]

	sc.Init, layout.init = sampleOps(r, ops, initLen)
	sc.Post, layout.post = sampleOps(r, ops, postLen)

	sc.Parallel = make([][]Op, cfg.NumThreads)
	layout.parallel = make([][]gen.Shrinker[Op], cfg.NumThreads)
	for t := 0; t < cfg.NumThreads; t++ {
		sc.Parallel[t], layout.parallel[t] = sampleOps(r, ops, parallelLens[t])
	}
	return sc, layout
}

func sampleOps[Op any](r *rand.Rand, ops gen.Generator[Op], n int) ([]Op, []gen.Shrinker[Op]) {
	if n == 0 {
		return nil, nil
	}
	vals := make([]Op, n)
	shrinks := make([]gen.Shrinker[Op], n)
	for i := 0; i < n; i++ {
		vals[i], shrinks[i] = ops.Generate(r, gen.Size{})
	}
	return vals, shrinks
}

// partition splits a total length n into an init length, one length per
// thread, and a post length, biased toward a nonempty parallel section when
// numThreads >= 2.
func partition(r *rand.Rand, n, numThreads int) (initLen int, parallelLens []int, postLen int) {
	parallelLens = make([]int, numThreads)
	if n <= 0 {
		return 0, parallelLens, 0
	}

	remaining := n
	// Reserve at least one op per thread when there is enough budget and
	// more than one thread, so the parallel section is non-trivial.
	if numThreads >= 2 && remaining >= numThreads {
		for t := 0; t < numThreads; t++ {
			parallelLens[t] = 1
			remaining--
		}
	} else if numThreads == 1 && remaining >= 1 {
		parallelLens[0] = 1
		remaining--
	}

	for remaining > 0 {
		// Weight the parallel section roughly 2x as likely as init/post
		// combined, to bias generation toward exercising concurrency.
		choice := r.Intn(numThreads + 2 + numThreads)
		switch {
		case choice < numThreads: // goes to init/post (first numThreads slots split evenly)
			if r.Intn(2) == 0 {
				initLen++
			} else {
				postLen++
			}
		default:
			t := r.Intn(numThreads)
			parallelLens[t]++
		}
		remaining--
	}
	return initLen, parallelLens, postLen
}
