package harness

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gomckit/lincheck/gen"
)

// Config holds the configuration for a linearizability check, mirroring
// prop.Config's shape: NumThreads and NumOps must both be >= 1.
type Config struct {
	// NumThreads is the number of worker threads in generated scenarios.
	NumThreads int
	// NumOps is the soft total op budget per scenario.
	NumOps int

	// Seed is the random seed used for scenario generation. Zero means a
	// time-derived seed is chosen at Verify time.
	Seed int64
	// Examples is the number of scenarios to generate and check.
	Examples int
	// MaxShrink bounds the number of shrinking steps performed once a
	// scenario fails.
	MaxShrink int
	// ShrinkStrat selects "bfs" or "dfs" scenario shrinking.
	ShrinkStrat string
	// Trials is the number of interleavings ScheduleExplorer explores per
	// scenario check.
	Trials int
}

var (
	flagSeed        = flag.Int64("lincheck.seed", 0, "Random seed for scenario generation")
	flagExamples    = flag.Int("lincheck.examples", 100, "Number of scenarios to generate")
	flagMaxShrink   = flag.Int("lincheck.maxshrink", 400, "Maximum number of shrinking steps")
	flagShrinkStrat = flag.String("lincheck.shrink.strategy", gen.ShrinkStrategyBFS, "Shrinking strategy (bfs or dfs)")
	flagThreads     = flag.Int("lincheck.threads", 2, "Number of worker threads per scenario")
	flagNumOps      = flag.Int("lincheck.numops", 8, "Soft total op budget per scenario")
	flagTrials      = flag.Int("lincheck.trials", 20, "Interleavings explored per scenario check")
)

// Default returns a Config seeded from command-line flags, exactly as
// prop.Default does for prop.Config.
func Default() Config {
	return Config{
		NumThreads:  *flagThreads,
		NumOps:      *flagNumOps,
		Seed:        *flagSeed,
		Examples:    *flagExamples,
		MaxShrink:   *flagMaxShrink,
		ShrinkStrat: *flagShrinkStrat,
		Trials:      *flagTrials,
	}
}

func (c Config) normalize() Config {
	if c.NumThreads < 1 {
		c.NumThreads = 1
	}
	if c.NumOps < 1 {
		c.NumOps = 1
	}
	if c.Examples <= 0 {
		c.Examples = 100
	}
	if c.MaxShrink < 0 {
		c.MaxShrink = 0
	}
	if c.ShrinkStrat == "" {
		c.ShrinkStrat = gen.ShrinkStrategyBFS
	}
	if c.Trials <= 0 {
		c.Trials = 20
	}
	return c
}

func (c Config) effectiveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

// FileConfig is the on-disk form of a named Config, one TOML document per
// suite: a team checking several data structures can keep one
// thread-count/op-budget/trial-count profile per structure under version
// control instead of repeating flags on every `go test` invocation.
type FileConfig struct {
	NumThreads  int    `toml:"num_threads,omitempty"`
	NumOps      int    `toml:"num_ops,omitempty"`
	Examples    int    `toml:"examples,omitempty"`
	MaxShrink   int    `toml:"max_shrink,omitempty"`
	ShrinkStrat string `toml:"shrink_strategy,omitempty"`
	Trials      int    `toml:"trials,omitempty"`
}

// ToConfig converts a FileConfig into a Config. Zero fields fall back to
// Default's flag-backed values once normalize runs, so a suite's TOML file
// only needs to set the fields it cares to override.
func (fc FileConfig) ToConfig() Config {
	cfg := Default()
	if fc.NumThreads != 0 {
		cfg.NumThreads = fc.NumThreads
	}
	if fc.NumOps != 0 {
		cfg.NumOps = fc.NumOps
	}
	if fc.Examples != 0 {
		cfg.Examples = fc.Examples
	}
	if fc.MaxShrink != 0 {
		cfg.MaxShrink = fc.MaxShrink
	}
	if fc.ShrinkStrat != "" {
		cfg.ShrinkStrat = fc.ShrinkStrat
	}
	if fc.Trials != 0 {
		cfg.Trials = fc.Trials
	}
	return cfg
}

func parseFileConfig(r io.Reader) (FileConfig, error) {
	var out FileConfig
	_, err := toml.NewDecoder(r).Decode(&out)
	return out, err
}

// LoadConfigFile reads a Config from a TOML file at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	fc, err := parseFileConfig(f)
	if err != nil {
		return Config{}, err
	}
	return fc.ToConfig(), nil
}
