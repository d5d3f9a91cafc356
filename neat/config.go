package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig         `yaml:"neat"`
	Genome       GenomeConfig       `yaml:"genome"`
	Mutation     MutationConfig     `yaml:"mutation"`
	SpeciesSet   SpeciesSetConfig   `yaml:"species_set"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
}

// NeatConfig holds parameters of the evolutionary run itself.
type NeatConfig struct {
	PopSize int   `ini:"pop_size" yaml:"pop_size"`
	Seed    int64 `ini:"seed" yaml:"seed"` // 0 = seed from the clock
}

// GenomeConfig holds the fixed shape of every genome.
type GenomeConfig struct {
	NumInputs  int `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs int `ini:"num_outputs" yaml:"num_outputs"`
}

// MutationConfig holds the small and large mutation regimes.
type MutationConfig struct {
	WeightStdevSmall float64 `ini:"weight_stdev_small" yaml:"weight_stdev_small"`
	WeightStdevLarge float64 `ini:"weight_stdev_large" yaml:"weight_stdev_large"`
	ConnAddProbSmall float64 `ini:"conn_add_prob_small" yaml:"conn_add_prob_small"`
	ConnAddProbLarge float64 `ini:"conn_add_prob_large" yaml:"conn_add_prob_large"`
	NodeAddProbSmall float64 `ini:"node_add_prob_small" yaml:"node_add_prob_small"`
	NodeAddProbLarge float64 `ini:"node_add_prob_large" yaml:"node_add_prob_large"`
	ConnAddAttempts  int     `ini:"conn_add_attempts" yaml:"conn_add_attempts"` // Hard cap on add-connection retries
}

// Species assignment rules.
const (
	SpeciesMatchLast  = "last"  // Join the last compatible species found.
	SpeciesMatchFirst = "first" // Join the first compatible species found.
)

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient" yaml:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient" yaml:"compatibility_weight_coefficient"`
	CompatibilityThreshold           float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	SpeciesMatch                     string  `ini:"species_match" yaml:"species_match"`
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	CloneProb  float64 `ini:"clone_prob" yaml:"clone_prob"`   // Chance an offspring is a verbatim copy
	MutateProb float64 `ini:"mutate_prob" yaml:"mutate_prob"` // Chance a crossover child is mutated

	// Offspring multipliers by species fitness z-score bucket.
	MultiplierFarBelow float64 `ini:"multiplier_far_below" yaml:"multiplier_far_below"` // < mean - stdev
	MultiplierBelow    float64 `ini:"multiplier_below" yaml:"multiplier_below"`         // < mean
	MultiplierAbove    float64 `ini:"multiplier_above" yaml:"multiplier_above"`         // < mean + stdev
	MultiplierFarAbove float64 `ini:"multiplier_far_above" yaml:"multiplier_far_above"` // otherwise
}

// DefaultConfig returns the configuration used by the racing controllers.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize: 100,
		},
		Genome: GenomeConfig{
			NumInputs:  6,
			NumOutputs: 2,
		},
		Mutation: MutationConfig{
			WeightStdevSmall: 0.02,
			WeightStdevLarge: 0.1,
			ConnAddProbSmall: 0.1,
			ConnAddProbLarge: 0.3,
			NodeAddProbSmall: 0.003,
			NodeAddProbLarge: 0.05,
			ConnAddAttempts:  40,
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityDisjointCoefficient: 1.0,
			CompatibilityWeightCoefficient:   0.2,
			CompatibilityThreshold:           4.0,
			SpeciesMatch:                     SpeciesMatchLast,
		},
		Reproduction: ReproductionConfig{
			CloneProb:          0.4,
			MutateProb:         0.4,
			MultiplierFarBelow: 0.1,
			MultiplierBelow:    0.5,
			MultiplierAbove:    1.5,
			MultiplierFarAbove: 3.0,
		},
	}
}

// LoadConfig loads configuration parameters from an INI or YAML file.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		return ParseYAMLConfig(data)
	default:
		return ParseINIConfig(filePath)
	}
}

// ParseINIConfig parses an INI configuration. source may be a file name or
// raw []byte content, as accepted by ini.Load.
func ParseINIConfig(source interface{}) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true, // Allow "value ; comment"
	}, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load ini config: %w", err)
	}

	config := DefaultConfig()

	sections := []struct {
		name string
		dst  interface{}
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultMutation", &config.Mutation},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultReproduction", &config.Reproduction},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	config.SpeciesSet.SpeciesMatch = strings.ToLower(strings.TrimSpace(config.SpeciesSet.SpeciesMatch))
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseYAMLConfig parses a YAML configuration on top of the defaults.
func ParseYAMLConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse yaml config: %w", err)
	}
	config.SpeciesSet.SpeciesMatch = strings.ToLower(strings.TrimSpace(config.SpeciesSet.SpeciesMatch))
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the algorithm cannot run with.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"conn_add_prob_small", c.Mutation.ConnAddProbSmall},
		{"conn_add_prob_large", c.Mutation.ConnAddProbLarge},
		{"node_add_prob_small", c.Mutation.NodeAddProbSmall},
		{"node_add_prob_large", c.Mutation.NodeAddProbLarge},
		{"clone_prob", c.Reproduction.CloneProb},
		{"mutate_prob", c.Reproduction.MutateProb},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}

	if c.Mutation.WeightStdevSmall < 0 || c.Mutation.WeightStdevLarge < 0 {
		return fmt.Errorf("config error: weight stdev cannot be negative")
	}
	if c.Mutation.ConnAddAttempts <= 0 {
		return fmt.Errorf("config error: conn_add_attempts must be positive")
	}
	if c.SpeciesSet.CompatibilityDisjointCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_disjoint_coefficient cannot be negative")
	}
	if c.SpeciesSet.CompatibilityWeightCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_weight_coefficient cannot be negative")
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	switch c.SpeciesSet.SpeciesMatch {
	case SpeciesMatchLast, SpeciesMatchFirst:
	default:
		return fmt.Errorf("config error: invalid species_match '%s', must be 'last' or 'first'", c.SpeciesSet.SpeciesMatch)
	}

	r := c.Reproduction
	for _, m := range []float64{r.MultiplierFarBelow, r.MultiplierBelow, r.MultiplierAbove, r.MultiplierFarAbove} {
		if m < 0 {
			return fmt.Errorf("config error: offspring multipliers cannot be negative")
		}
	}
	return nil
}
