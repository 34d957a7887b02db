package prop

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/gomckit/lincheck/gen"
)

// Command describes one action a state machine can take: Generator produces
// candidate Cmd values, Execute applies a Cmd to the model state, and
// Precondition/Postcondition constrain when a Cmd may run and what must
// hold once it has.
type Command[S, Cmd any] struct {
	Name string

	Generator gen.Generator[Cmd]

	// Execute applies cmd to state and returns the resulting state. An
	// error marks the step as failed without halting execution.
	Execute func(state S, cmd Cmd) (S, error)

	// Precondition reports whether cmd may run against state. A nil
	// Precondition always allows the command.
	Precondition func(state S, cmd Cmd) bool

	// Postcondition reports whether the transition from before to after
	// was valid. A nil Postcondition is always satisfied.
	Postcondition func(before S, cmd Cmd, after S) bool
}

// StateMachine describes a model as an initial state plus the commands that
// may act on it.
type StateMachine[S, Cmd any] struct {
	InitialState S
	Commands     []Command[S, Cmd]
}

// CommandSequence is a generated run: an ordered list of Cmd values to feed
// through a StateMachine.
type CommandSequence[Cmd any] struct {
	Commands []Cmd
}

// StateTransition records one step of an executed CommandSequence.
type StateTransition[S, Cmd any] struct {
	Command   Cmd
	FromState S
	ToState   S
	Error     error
}

// StateMachineResult is the outcome of running a CommandSequence against a
// StateMachine.
type StateMachineResult[S, Cmd any] struct {
	FinalState       S
	ExecutionHistory []StateTransition[S, Cmd]
	SkippedCommands  []Cmd
}

// executeStateMachine runs seq against sm. Every step is driven by
// sm.Commands[0]: a CommandSequence carries only Cmd values, not which
// Command template generated them, so the single template's Execute and
// Precondition are applied uniformly across the whole sequence. A step whose
// precondition rejects the current state is recorded as skipped rather than
// executed; every other step is executed and appended to the history even
// when Execute returns an error, since Execute itself decides what state an
// error leaves behind.
func executeStateMachine[S, Cmd any](sm StateMachine[S, Cmd], seq CommandSequence[Cmd]) StateMachineResult[S, Cmd] {
	state := sm.InitialState
	result := StateMachineResult[S, Cmd]{FinalState: state}

	if len(sm.Commands) == 0 {
		result.SkippedCommands = append(result.SkippedCommands, seq.Commands...)
		return result
	}

	template := sm.Commands[0]
	for _, cmd := range seq.Commands {
		if template.Precondition != nil && !template.Precondition(state, cmd) {
			result.SkippedCommands = append(result.SkippedCommands, cmd)
			continue
		}

		from := state
		var next S
		var err error
		if template.Execute != nil {
			next, err = template.Execute(state, cmd)
		} else {
			next = state
		}

		result.ExecutionHistory = append(result.ExecutionHistory, StateTransition[S, Cmd]{
			Command:   cmd,
			FromState: from,
			ToState:   next,
			Error:     err,
		})
		state = next
	}

	result.FinalState = state
	return result
}

// commandSequenceGenerator generates CommandSequence[Cmd] values by, at each
// position, picking one of stateMachine's Commands uniformly at random and
// delegating to its Generator. maxLength bounds the sequence length
// directly; when maxLength <= 0, the Generate call's own Size.Max is used
// instead.
type commandSequenceGenerator[S, Cmd any] struct {
	stateMachine StateMachine[S, Cmd]
	maxLength    int
}

func (g commandSequenceGenerator[S, Cmd]) Generate(r *rand.Rand, sz gen.Size) (CommandSequence[Cmd], gen.Shrinker[CommandSequence[Cmd]]) {
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}

	if len(g.stateMachine.Commands) == 0 {
		return CommandSequence[Cmd]{}, func(bool) (CommandSequence[Cmd], bool) { return CommandSequence[Cmd]{}, false }
	}

	maxLen := g.maxLength
	if maxLen <= 0 {
		maxLen = sz.Max
	}
	if maxLen < 0 {
		maxLen = 0
	}

	n := 0
	if maxLen > 0 {
		n = r.Intn(maxLen + 1)
	}

	cmds := make([]Cmd, n)
	shrinks := make([]gen.Shrinker[Cmd], n)
	for i := 0; i < n; i++ {
		idx := r.Intn(len(g.stateMachine.Commands))
		cmds[i], shrinks[i] = g.stateMachine.Commands[idx].Generator.Generate(r, gen.Size{})
	}

	return newCommandSequenceShrinker(cmds, shrinks)
}

// newCommandSequenceShrinker builds the Shrinker for a generated command
// sequence, mirroring gen.SliceOf's own shrink loop: remove large blocks,
// then isolated elements right-to-left, then try each element's own
// shrinker while holding the length fixed.
func newCommandSequenceShrinker[Cmd any](cur []Cmd, shks []gen.Shrinker[Cmd]) (CommandSequence[Cmd], gen.Shrinker[CommandSequence[Cmd]]) {
	seen := map[string]struct{}{cmdSig(cur): {}}
	queue := make([][]Cmd, 0, 64)
	var last []Cmd

	push := func(s []Cmd) {
		k := cmdSig(s)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		queue = append(queue, append([]Cmd(nil), s...))
	}

	remove := func(base []Cmd, i, j int) []Cmd {
		out := make([]Cmd, 0, len(base)-(j-i))
		out = append(out, base[:i]...)
		out = append(out, base[j:]...)
		return out
	}

	grow := func(base []Cmd) {
		queue = queue[:0]
		L := len(base)
		if L == 0 {
			return
		}
		chunk := L / 2
		for chunk >= 1 {
			for i := 0; i+chunk <= L; i += chunk {
				push(remove(base, i, i+chunk))
			}
			chunk /= 2
		}
		for i := L - 1; i >= 0; i-- {
			push(remove(base, i, i+1))
		}
		for i := L - 1; i >= 0; i-- {
			if shks == nil || shks[i] == nil {
				continue
			}
			if nv, ok := shks[i](false); ok {
				cand := append([]Cmd(nil), base...)
				cand[i] = nv
				push(cand)
			}
		}
	}
	grow(cur)

	pop := func() ([]Cmd, bool) {
		if len(queue) == 0 {
			return nil, false
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

	shrink := func(accept bool) (CommandSequence[Cmd], bool) {
		if accept && last != nil && cmdSig(last) != cmdSig(cur) {
			cur = last
			shks = nil
			grow(cur)
		}
		next, ok := pop()
		if !ok {
			return CommandSequence[Cmd]{}, false
		}
		last = next
		return CommandSequence[Cmd]{Commands: next}, true
	}

	return CommandSequence[Cmd]{Commands: cur}, shrink
}

func cmdSig[Cmd any](s []Cmd) string { return fmt.Sprintf("%#v", s) }

// TestStateMachine drives generated CommandSequences through sm the same way
// ForAll drives generated values through a property body: Examples sequences
// are generated, each is executed with executeStateMachine, and the first
// step whose Execute returned an error or whose Postcondition rejected the
// transition fails the example, triggering ForAll's usual shrink loop.
//
// maxLength bounds how long a generated sequence may be; zero falls back to
// ForAll's own Size.Max for the generator passed in.
func TestStateMachine[S, Cmd any](t *testing.T, sm StateMachine[S, Cmd], cfg Config, maxLength int) {
	g := commandSequenceGenerator[S, Cmd]{stateMachine: sm, maxLength: maxLength}

	ForAll(t, cfg, g)(func(st *testing.T, seq CommandSequence[Cmd]) {
		result := executeStateMachine(sm, seq)

		if len(sm.Commands) == 0 {
			return
		}
		template := sm.Commands[0]

		for i, step := range result.ExecutionHistory {
			if step.Error != nil {
				st.Fatalf("step %d: command %v: execute error: %v", i, step.Command, step.Error)
			}
			if template.Postcondition != nil && !template.Postcondition(step.FromState, step.Command, step.ToState) {
				st.Fatalf("step %d: command %v: postcondition violated: %#v -> %#v", i, step.Command, step.FromState, step.ToState)
			}
		}
	})
}
