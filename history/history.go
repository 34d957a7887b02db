// Package history holds the plain data produced by executing a scenario:
// the observed history the linearizability checker decides over.
package history

// Completion records that the op at Parallel[Thread][Index] finished at a
// particular point in the real-time completion order of a single execution.
// Rows in the rendered PARALLEL PART table are ordered by this sequence, per
// the "completion order" resolution in DESIGN.md.
type Completion struct {
	Thread int
	Index  int
}

// Observed is the result of executing one interleaving of a scenario:
// per-segment results aligned positionally with the scenario's ops, plus the
// real-time completion order of the parallel segment.
type Observed[Ret any] struct {
	InitResults     []Ret
	ParallelResults [][]Ret
	PostResults     []Ret
	CompletionOrder []Completion
}

// Clone returns a deep copy, safe to retain across further scenario
// executions (e.g. while shrinking keeps the last-failing observation).
func (o *Observed[Ret]) Clone() *Observed[Ret] {
	if o == nil {
		return nil
	}
	out := &Observed[Ret]{
		InitResults:     append([]Ret(nil), o.InitResults...),
		PostResults:     append([]Ret(nil), o.PostResults...),
		CompletionOrder: append([]Completion(nil), o.CompletionOrder...),
	}
	out.ParallelResults = make([][]Ret, len(o.ParallelResults))
	for i, r := range o.ParallelResults {
		out.ParallelResults[i] = append([]Ret(nil), r...)
	}
	return out
}
