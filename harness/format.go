package harness

import (
	"fmt"
	"strings"

	"github.com/gomckit/lincheck/scenario"
)

// Format renders a counterexample as three banded tables: INIT PART and
// POST PART each have a single "MAIN THREAD" column, one row per op, while
// PARALLEL PART has one "THREAD k" column per worker thread with rows
// ordered by completion order. Every cell reads "Op : Ret".
func Format[Op, Ret any](sc scenario.Scenario[Op], f *Failure[Op, Ret]) string {
	var b strings.Builder

	writeBand(&b, "INIT PART:")
	if len(sc.Init) == 0 {
		b.WriteString("  (empty)\n")
	} else {
		writeMainThreadTable(&b, sc.Init, initResult(f))
	}

	writeBand(&b, "PARALLEL PART:")
	writeParallelTable(&b, sc, f)

	writeBand(&b, "POST PART:")
	if f.Abort != nil {
		b.WriteString("  (not reached: execution aborted)\n")
	} else if len(sc.Post) == 0 {
		b.WriteString("  (empty)\n")
	} else {
		writeMainThreadTable(&b, sc.Post, postResult(f))
	}

	if f.Abort != nil {
		fmt.Fprintf(&b, "\nABORT: %s on thread %d (op %d): %s\n", f.Abort.Reason, f.Abort.Thread, f.Abort.OpIndex, f.Abort.Message)
	}
	if f.Reason != "" {
		fmt.Fprintf(&b, "\nreason: %s\n", f.Reason)
	}

	return b.String()
}

func writeBand(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s\n", title)
}

// writeMainThreadTable renders the single-column "MAIN THREAD" table the
// INIT and POST bands share: one row per op, executed serially before or
// after the parallel part.
func writeMainThreadTable[Op any](b *strings.Builder, ops []Op, resultAt func(i int) any) {
	cells := make([]string, len(ops))
	for i, op := range ops {
		cells[i] = fmt.Sprintf("%v : %v", op, resultAt(i))
	}

	width := len("MAIN THREAD")
	for _, c := range cells {
		if len(c) > width {
			width = len(c)
		}
	}

	writeRow(b, []string{"MAIN THREAD"}, []int{width})
	writeSeparator(b, []int{width})
	for _, c := range cells {
		writeRow(b, []string{c}, []int{width})
	}
}

// initResult returns a lookup closure for the i-th InitResults entry, or nil
// if no observation reaches that far (scenario generation always produces
// one, but a failure recorded before execution started may carry none).
func initResult[Op, Ret any](f *Failure[Op, Ret]) func(i int) any {
	return func(i int) any {
		if f.Observed != nil && i < len(f.Observed.InitResults) {
			return f.Observed.InitResults[i]
		}
		return nil
	}
}

// postResult is initResult's PostResults counterpart.
func postResult[Op, Ret any](f *Failure[Op, Ret]) func(i int) any {
	return func(i int) any {
		if f.Observed != nil && i < len(f.Observed.PostResults) {
			return f.Observed.PostResults[i]
		}
		return nil
	}
}

// writeParallelTable renders the per-thread columns at a shared width, with
// rows ordered by completion order where available and by program order
// otherwise (e.g. after an abort cut the execution short).
func writeParallelTable[Op, Ret any](b *strings.Builder, sc scenario.Scenario[Op], f *Failure[Op, Ret]) {
	n := sc.NumThreads()
	if n == 0 {
		b.WriteString("  (no threads)\n")
		return
	}

	headers := make([]string, n)
	for t := 0; t < n; t++ {
		headers[t] = fmt.Sprintf("THREAD %d", t)
	}

	cells := make([][]string, n)
	for t := 0; t < n; t++ {
		cells[t] = make([]string, len(sc.Parallel[t]))
		for i, op := range sc.Parallel[t] {
			var ret any
			if f.Observed != nil && t < len(f.Observed.ParallelResults) && i < len(f.Observed.ParallelResults[t]) {
				ret = f.Observed.ParallelResults[t][i]
			}
			cells[t][i] = fmt.Sprintf("%v : %v", op, ret)
		}
	}

	widths := make([]int, n)
	for t := 0; t < n; t++ {
		widths[t] = len(headers[t])
		for _, c := range cells[t] {
			if len(c) > widths[t] {
				widths[t] = len(c)
			}
		}
	}

	writeRow(b, headers, widths)
	writeSeparator(b, widths)

	rows := rowOrder(sc, f)
	for _, row := range rows {
		line := make([]string, n)
		for t := 0; t < n; t++ {
			if row[t] >= 0 {
				line[t] = cells[t][row[t]]
			}
		}
		writeRow(b, line, widths)
	}
}

// rowOrder yields one []int per table row, giving for each thread the index
// of the op occupying that row (or -1 if that thread has no op there). When
// CompletionOrder is available it drives one row per completed op, in
// completion order; otherwise ops are laid out by program order, one row per
// position, which is the best available ordering when execution aborted
// before completing.
func rowOrder[Op, Ret any](sc scenario.Scenario[Op], f *Failure[Op, Ret]) [][]int {
	n := sc.NumThreads()
	if f.Observed != nil && len(f.Observed.CompletionOrder) > 0 {
		rows := make([][]int, len(f.Observed.CompletionOrder))
		for i, c := range f.Observed.CompletionOrder {
			row := make([]int, n)
			for t := range row {
				row[t] = -1
			}
			row[c.Thread] = c.Index
			rows[i] = row
		}
		return rows
	}

	maxLen := 0
	for _, p := range sc.Parallel {
		if len(p) > maxLen {
			maxLen = len(p)
		}
	}
	rows := make([][]int, maxLen)
	for i := range rows {
		row := make([]int, n)
		for t := 0; t < n; t++ {
			if i < len(sc.Parallel[t]) {
				row[t] = i
			} else {
				row[t] = -1
			}
		}
		rows[i] = row
	}
	return rows
}

func writeRow(b *strings.Builder, cols []string, widths []int) {
	b.WriteByte('|')
	for i, c := range cols {
		fmt.Fprintf(b, " %-*s |", widths[i], c)
	}
	b.WriteByte('\n')
}

func writeSeparator(b *strings.Builder, widths []int) {
	b.WriteByte('|')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('|')
	}
	b.WriteByte('\n')
}
