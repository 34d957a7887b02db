// Package linearize decides whether an observed history admits a
// linearization witnessing a sequential spec, using a classic Wing & Gong
// enumeration with cursor-vector memoization.
package linearize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomckit/lincheck/contract"
	"github.com/gomckit/lincheck/history"
	"github.com/gomckit/lincheck/scenario"
)

// Result is the outcome of one Check call.
type Result struct {
	Linearizable bool
	// Reason is a short human-readable explanation, populated whenever
	// Linearizable is false.
	Reason string
}

// Checker decides linearizability of observed histories against a
// Sequential reference spec.
type Checker[S contract.Cloner[S], Op contract.Value, Ret contract.Value] struct {
	Sequential contract.Sequential[S, Op, Ret]
}

type pendingOp[Op, Ret any] struct {
	Op  Op
	Ret Ret
}

// Check decides whether obs admits a linearization of sc's parallel segment
// consistent with the sequential spec, after replaying init and before
// replaying post.
func (c *Checker[S, Op, Ret]) Check(sc scenario.Scenario[Op], obs *history.Observed[Ret]) Result {
	s := c.Sequential.New()
	for i, op := range sc.Init {
		want := c.Sequential.Apply(&s, op)
		if want != obs.InitResults[i] {
			return Result{Reason: fmt.Sprintf("init op %d (%s): expected %s, observed %s", i, op, want, obs.InitResults[i])}
		}
	}

	threads := make([][]pendingOp[Op, Ret], len(sc.Parallel))
	for t := range sc.Parallel {
		threads[t] = make([]pendingOp[Op, Ret], len(sc.Parallel[t]))
		for i, op := range sc.Parallel[t] {
			threads[t][i] = pendingOp[Op, Ret]{Op: op, Ret: obs.ParallelResults[t][i]}
		}
	}

	sr := &search[S, Op, Ret]{
		apply:   c.Sequential.Apply,
		threads: threads,
		post:    sc.Post,
		postRet: obs.PostResults,
		memo:    make(map[string]bool),
	}

	cursors := make([]int, len(threads))
	if sr.run(s, cursors) {
		return Result{Linearizable: true}
	}
	return Result{Reason: "no linearization of the parallel segment (and, where reached, the post segment) matches the observed returns"}
}

// search holds the fixed inputs to one Wing & Gong enumeration so run can
// recurse without re-threading them as parameters.
type search[S contract.Cloner[S], Op contract.Value, Ret contract.Value] struct {
	apply   func(*S, Op) Ret
	threads [][]pendingOp[Op, Ret]
	post    []Op
	postRet []Ret
	memo    map[string]bool
}

// run explores the frontier from state/cursors, trying threads in id order
// for deterministic counterexample traces.
//
// Memoization caches only "failed" cursor vectors: a given set of completed
// prefixes has no extension once explored, because the sequential spec is
// deterministic. This is a simplification relative to memoizing (state,
// cursor-vector) pairs.
func (sr *search[S, Op, Ret]) run(state S, cursors []int) bool {
	key := cursorKey(cursors)
	if sr.memo[key] {
		return false
	}

	done := true
	for t := range cursors {
		if cursors[t] < len(sr.threads[t]) {
			done = false
			break
		}
	}
	if done {
		if sr.checkPost(state) {
			return true
		}
		sr.memo[key] = true
		return false
	}

	for t := range sr.threads {
		if cursors[t] >= len(sr.threads[t]) {
			continue
		}
		p := sr.threads[t][cursors[t]]
		trial := state.Clone()
		got := sr.apply(&trial, p.Op)
		if got != p.Ret {
			continue
		}
		next := append([]int(nil), cursors...)
		next[t]++
		if sr.run(trial, next) {
			return true
		}
	}

	sr.memo[key] = true
	return false
}

func (sr *search[S, Op, Ret]) checkPost(state S) bool {
	trial := state.Clone()
	for i, op := range sr.post {
		want := sr.apply(&trial, op)
		if want != sr.postRet[i] {
			return false
		}
	}
	return true
}

func cursorKey(cursors []int) string {
	var b strings.Builder
	for i, c := range cursors {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}
