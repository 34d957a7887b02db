package scenario

import (
	"fmt"

	"github.com/gomckit/lincheck/gen"
)

// segKind identifies one of the scenario's op sequences: the init segment,
// the post segment, or one of the parallel threads.
type segKind int

const (
	segInit segKind = iota
	segParallel
	segPost
)

// candidate bundles a scenario together with the per-position shrinkers
// still available for each of its ops, so later shrink rounds can keep
// delegating to the op strategy's own shrinker.
type candidate[Op any] struct {
	sc     Scenario[Op]
	layout shrinkLayout[Op]
}

// sig renders a cheap textual signature used only to deduplicate shrink
// candidates, in the same spirit as gen.SliceOf's internal "sig" helper.
func sig[Op any](sc Scenario[Op]) string {
	return fmt.Sprintf("%#v", sc)
}

// newShrinker builds the Shrinker[Scenario[Op]] for a freshly generated
// scenario: three tactics tried in order (drop, then replace, then
// merge-adjacent-threads) via a BFS/DFS queue exactly like gen.SliceOf's
// internal shrink loop.
func newShrinker[Op any](sc Scenario[Op], layout shrinkLayout[Op], ops gen.Generator[Op], cfg Config) gen.Shrinker[Scenario[Op]] {
	cur := candidate[Op]{sc: sc, layout: layout}

	queue := make([]candidate[Op], 0, 64)
	seen := map[string]struct{}{sig(sc): {}}
	var last candidate[Op]
	haveLast := false

	push := func(c candidate[Op]) {
		k := sig(c.sc)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		queue = append(queue, c)
	}

	grow := func(base candidate[Op]) {
		queue = queue[:0]
		// Tactic 1: drop one op, longest segment first, every position.
		for _, c := range dropCandidates(base) {
			push(c)
		}
		// Tactic 2: replace one op with a simpler one from its own shrinker.
		for _, c := range replaceCandidates(base) {
			push(c)
		}
		// Tactic 3: merge two adjacent parallel threads by interleaving.
		for _, c := range mergeCandidates(base) {
			push(c)
		}
	}
	grow(cur)

	pop := func() (candidate[Op], bool) {
		if len(queue) == 0 {
			return candidate[Op]{}, false
		}
		if gen.GetShrinkStrategy() == gen.ShrinkStrategyDFS {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			return v, true
		}
		v := queue[0]
		queue = queue[1:]
		return v, true
	}

	return func(accept bool) (Scenario[Op], bool) {
		if accept && haveLast {
			if sig(last.sc) != sig(cur.sc) {
				cur = last
				grow(cur)
			}
		}
		next, ok := pop()
		if !ok {
			return Scenario[Op]{}, false
		}
		last, haveLast = next, true
		return next.sc, true
	}
}

// dropCandidates implements tactic 1: remove one op, trying the longest
// segment first and every position within a segment.
func dropCandidates[Op any](base candidate[Op]) []candidate[Op] {
	type seg struct {
		kind   segKind
		thread int
		length int
	}
	segs := []seg{
		{segInit, -1, len(base.sc.Init)},
	}
	for t := range base.sc.Parallel {
		segs = append(segs, seg{segParallel, t, len(base.sc.Parallel[t])})
	}
	segs = append(segs, seg{segPost, -1, len(base.sc.Post)})

	// stable sort by descending length (longest first); small N, insertion sort is fine.
	for i := 1; i < len(segs); i++ {
		for j := i; j > 0 && segs[j].length > segs[j-1].length; j-- {
			segs[j], segs[j-1] = segs[j-1], segs[j]
		}
	}

	var out []candidate[Op]
	for _, s := range segs {
		if s.length == 0 {
			continue
		}
		for i := 0; i < s.length; i++ {
			out = append(out, dropAt(base, s.kind, s.thread, i))
		}
	}
	return out
}

func dropAt[Op any](base candidate[Op], kind segKind, thread, idx int) candidate[Op] {
	c := candidate[Op]{sc: base.sc.Clone(), layout: cloneLayout(base.layout)}
	switch kind {
	case segInit:
		c.sc.Init = removeAt(c.sc.Init, idx)
		c.layout.init = removeShrinkerAt(c.layout.init, idx)
	case segPost:
		c.sc.Post = removeAt(c.sc.Post, idx)
		c.layout.post = removeShrinkerAt(c.layout.post, idx)
	case segParallel:
		c.sc.Parallel[thread] = removeAt(c.sc.Parallel[thread], idx)
		c.layout.parallel[thread] = removeShrinkerAt(c.layout.parallel[thread], idx)
	}
	return c
}

// replaceCandidates implements tactic 2: propose one op's own shrinker's
// next candidate, for every position that still has a live shrinker.
func replaceCandidates[Op any](base candidate[Op]) []candidate[Op] {
	var out []candidate[Op]

	tryReplace := func(get func(candidate[Op]) []Op, getShrink func(candidate[Op]) []gen.Shrinker[Op], set func(*candidate[Op], []Op, []gen.Shrinker[Op])) {
		ops := get(base)
		shrinks := getShrink(base)
		for i := range ops {
			if shrinks[i] == nil {
				continue
			}
			nv, ok := shrinks[i](false)
			if !ok {
				continue
			}
			c := candidate[Op]{sc: base.sc.Clone(), layout: cloneLayout(base.layout)}
			newOps := get(c)
			newShrinks := getShrink(c)
			newOps[i] = nv
			newShrinks[i] = shrinks[i]
			set(&c, newOps, newShrinks)
			out = append(out, c)
		}
	}

	tryReplace(
		func(c candidate[Op]) []Op { return c.sc.Init },
		func(c candidate[Op]) []gen.Shrinker[Op] { return c.layout.init },
		func(c *candidate[Op], ops []Op, sh []gen.Shrinker[Op]) { c.sc.Init, c.layout.init = ops, sh },
	)
	tryReplace(
		func(c candidate[Op]) []Op { return c.sc.Post },
		func(c candidate[Op]) []gen.Shrinker[Op] { return c.layout.post },
		func(c *candidate[Op], ops []Op, sh []gen.Shrinker[Op]) { c.sc.Post, c.layout.post = ops, sh },
	)
	for t := range base.sc.Parallel {
		t := t
		tryReplace(
			func(c candidate[Op]) []Op { return c.sc.Parallel[t] },
			func(c candidate[Op]) []gen.Shrinker[Op] { return c.layout.parallel[t] },
			func(c *candidate[Op], ops []Op, sh []gen.Shrinker[Op]) { c.sc.Parallel[t], c.layout.parallel[t] = ops, sh },
		)
	}
	return out
}

// mergeCandidates implements tactic 3: merge two adjacent parallel threads
// by interleaving their op sequences, only offered when there is more than
// one thread (a scenario requiring NumThreads > 1 to fail will simply be
// rejected by the harness's failure-preserving re-check).
func mergeCandidates[Op any](base candidate[Op]) []candidate[Op] {
	n := len(base.sc.Parallel)
	if n < 2 {
		return nil
	}
	var out []candidate[Op]
	for t := 0; t < n-1; t++ {
		c := candidate[Op]{sc: base.sc.Clone(), layout: cloneLayout(base.layout)}
		merged, mergedShrinks := interleave(c.sc.Parallel[t], c.sc.Parallel[t+1], c.layout.parallel[t], c.layout.parallel[t+1])

		newParallel := make([][]Op, 0, n-1)
		newShrinks := make([][]gen.Shrinker[Op], 0, n-1)
		for i := 0; i < n; i++ {
			switch {
			case i == t:
				newParallel = append(newParallel, merged)
				newShrinks = append(newShrinks, mergedShrinks)
			case i == t+1:
				continue
			default:
				newParallel = append(newParallel, c.sc.Parallel[i])
				newShrinks = append(newShrinks, c.layout.parallel[i])
			}
		}
		c.sc.Parallel = newParallel
		c.layout.parallel = newShrinks
		out = append(out, c)
	}
	return out
}

func interleave[Op any](a, b []Op, as, bs []gen.Shrinker[Op]) ([]Op, []gen.Shrinker[Op]) {
	out := make([]Op, 0, len(a)+len(b))
	shrinks := make([]gen.Shrinker[Op], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		if i < len(a) {
			out = append(out, a[i])
			shrinks = append(shrinks, as[i])
			i++
		}
		if j < len(b) {
			out = append(out, b[j])
			shrinks = append(shrinks, bs[j])
			j++
		}
	}
	return out, shrinks
}

func removeAt[Op any](s []Op, idx int) []Op {
	out := make([]Op, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out
}

func removeShrinkerAt[Op any](s []gen.Shrinker[Op], idx int) []gen.Shrinker[Op] {
	out := make([]gen.Shrinker[Op], 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out
}

func cloneLayout[Op any](l shrinkLayout[Op]) shrinkLayout[Op] {
	out := shrinkLayout[Op]{
		init: append([]gen.Shrinker[Op](nil), l.init...),
		post: append([]gen.Shrinker[Op](nil), l.post...),
	}
	out.parallel = make([][]gen.Shrinker[Op], len(l.parallel))
	for i, p := range l.parallel {
		out.parallel[i] = append([]gen.Shrinker[Op](nil), p...)
	}
	return out
}
