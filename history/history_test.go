package history_test

import (
	"testing"

	"github.com/gomckit/lincheck/history"
	"github.com/gomckit/lincheck/quick"
)

func TestObservedCloneIsIndependent(t *testing.T) {
	obs := &history.Observed[int]{
		InitResults:     []int{1},
		ParallelResults: [][]int{{2, 3}, {4}},
		PostResults:     []int{5},
		CompletionOrder: []history.Completion{{Thread: 0, Index: 0}, {Thread: 1, Index: 0}},
	}

	clone := obs.Clone()
	clone.InitResults[0] = 99
	clone.ParallelResults[0][0] = 99
	clone.CompletionOrder[0].Index = 99

	quick.Equal(t, obs.InitResults[0], 1)
	quick.Equal(t, obs.ParallelResults[0][0], 2)
	quick.Equal(t, obs.CompletionOrder[0].Index, 0)
}

func TestObservedCloneNil(t *testing.T) {
	var obs *history.Observed[int]
	if obs.Clone() != nil {
		t.Fatalf("expected Clone of nil Observed to return nil")
	}
}
