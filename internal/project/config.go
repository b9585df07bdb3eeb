// Package project locates a project root by its mica.toml manifest and
// loads the analysis configuration stored there.
package project

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Policy names accepted in the [analysis] section.
const (
	PolicyAggressive   = "aggressive"
	PolicyConservative = "conservative"
)

// Defaults applied when mica.toml is absent or a key is omitted.
const (
	DefaultStackLimit     uint32 = 64 * 1024
	DefaultSIMDWidth      uint8  = 8
	DefaultMaxDiagnostics        = 100
)

// PackageConfig describes the [package] section.
type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// AnalysisConfig describes the [analysis] section: allocation policy,
// stack budget and loop-optimization knobs.
type AnalysisConfig struct {
	// Policy selects stack-vs-heap eagerness: "aggressive" keeps values on
	// the stack unless they provably escape, "conservative" heap-allocates
	// anything large or long-lived.
	Policy string `toml:"policy"`

	// StackLimit is the per-variable stack budget in bytes.
	StackLimit uint32 `toml:"stack-limit"`

	// SIMDWidth is the vector width in lanes hinted to loop analysis.
	SIMDWidth uint8 `toml:"simd-width"`

	// MaxDiagnostics caps the diagnostics reported per unit.
	MaxDiagnostics int `toml:"max-diagnostics"`

	// Jobs bounds parallel unit analysis; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

// Config is the parsed mica.toml manifest.
type Config struct {
	Package  PackageConfig  `toml:"package"`
	Analysis AnalysisConfig `toml:"analysis"`
}

// DefaultConfig returns the configuration used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Analysis: AnalysisConfig{
			Policy:         PolicyAggressive,
			StackLimit:     DefaultStackLimit,
			SIMDWidth:      DefaultSIMDWidth,
			MaxDiagnostics: DefaultMaxDiagnostics,
		},
	}
}

// Load parses the manifest at path. Omitted keys fall back to defaults;
// unknown keys are rejected so typos do not silently disable analysis.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the value ranges of the [analysis] section.
func (c *Config) Validate() error {
	switch c.Analysis.Policy {
	case PolicyAggressive, PolicyConservative:
	default:
		return fmt.Errorf("analysis.policy must be %q or %q, got %q",
			PolicyAggressive, PolicyConservative, c.Analysis.Policy)
	}
	switch c.Analysis.SIMDWidth {
	case 0, 2, 4, 8, 16:
	default:
		return fmt.Errorf("analysis.simd-width must be 0, 2, 4, 8 or 16, got %d", c.Analysis.SIMDWidth)
	}
	if c.Analysis.StackLimit == 0 {
		return fmt.Errorf("analysis.stack-limit must be positive")
	}
	if c.Analysis.MaxDiagnostics <= 0 {
		return fmt.Errorf("analysis.max-diagnostics must be positive, got %d", c.Analysis.MaxDiagnostics)
	}
	if c.Analysis.Jobs < 0 {
		return fmt.Errorf("analysis.jobs must be non-negative, got %d", c.Analysis.Jobs)
	}
	return nil
}
