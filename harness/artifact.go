package harness

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shamaton/msgpack/v2"

	"github.com/gomckit/lincheck/explore"
	"github.com/gomckit/lincheck/history"
	"github.com/gomckit/lincheck/scenario"
)

// Artifact is the durable, replayable form of a Failure: a failing scenario
// plus the observation that proved it non-linearizable, tagged with the seed
// that produced it and a stable ID so a CI run can point a developer at the
// exact file.
type Artifact[Op, Ret any] struct {
	ID       string
	Seed     int64
	Kind     string
	Scenario scenario.Scenario[Op]
	Observed *history.Observed[Ret]
	Abort    *explore.Abort
	Reason   string
}

// NewArtifact captures f into a persistable Artifact, minting a fresh ID.
func NewArtifact[Op, Ret any](seed int64, f *Failure[Op, Ret]) Artifact[Op, Ret] {
	return Artifact[Op, Ret]{
		ID:       uuid.NewString(),
		Seed:     seed,
		Kind:     f.Kind.String(),
		Scenario: f.Scenario,
		Observed: f.Observed,
		Abort:    f.Abort,
		Reason:   f.Reason,
	}
}

// SaveArtifact msgpack-encodes a into path, creating or truncating it.
func SaveArtifact[Op, Ret any](path string, a Artifact[Op, Ret]) error {
	buf, err := msgpack.Marshal(a)
	if err != nil {
		return fmt.Errorf("harness: encode artifact: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("harness: write artifact %s: %w", path, err)
	}
	return nil
}

// LoadArtifact decodes an Artifact previously written by SaveArtifact. The
// caller supplies Op and Ret to match the original contract; a mismatched
// pair fails to decode.
func LoadArtifact[Op, Ret any](path string) (Artifact[Op, Ret], error) {
	var a Artifact[Op, Ret]
	buf, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("harness: read artifact %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(buf, &a); err != nil {
		return a, fmt.Errorf("harness: decode artifact %s: %w", path, err)
	}
	return a, nil
}
