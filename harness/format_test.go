package harness_test

import (
	"strings"
	"testing"

	"github.com/gomckit/lincheck/explore"
	"github.com/gomckit/lincheck/harness"
	"github.com/gomckit/lincheck/history"
	"github.com/gomckit/lincheck/scenario"
)

func TestFormatIncludesAllThreeBands(t *testing.T) {
	sc := scenario.Scenario[regOp]{
		Init:     []regOp{{isSet: true, value: 1}},
		Parallel: [][]regOp{{{isSet: true, value: 2}}, {{}}},
		Post:     []regOp{{}},
	}
	f := &harness.Failure[regOp, regRet]{
		Kind:     harness.FailureNonLinearizable,
		Scenario: sc,
		Observed: &history.Observed[regRet]{
			InitResults:     []regRet{1},
			ParallelResults: [][]regRet{{2}, {0}},
			PostResults:     []regRet{2},
			CompletionOrder: []history.Completion{{Thread: 1, Index: 0}, {Thread: 0, Index: 0}},
		},
		Reason: "no linearization found",
	}

	out := harness.Format(sc, f)

	for _, want := range []string{"INIT PART:", "PARALLEL PART:", "POST PART:", "MAIN THREAD", "THREAD 1", "no linearization found"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatHandlesAbortedExecution(t *testing.T) {
	sc := scenario.Scenario[regOp]{
		Parallel: [][]regOp{{{}}},
		Post:     []regOp{{}},
	}
	abort := explore.Abort{Reason: explore.AbortPanicked, Thread: 0, OpIndex: 0, Message: "boom"}
	f := &harness.Failure[regOp, regRet]{
		Kind:     harness.FailurePanic,
		Scenario: sc,
		Abort:    &abort,
		Reason:   "explore: panicked on thread 0 (op 0): boom",
	}

	out := harness.Format(sc, f)
	if !strings.Contains(out, "not reached") {
		t.Fatalf("expected aborted executions to note the post part was not reached, got:\n%s", out)
	}
	if !strings.Contains(out, "ABORT:") {
		t.Fatalf("expected an ABORT band, got:\n%s", out)
	}
}
