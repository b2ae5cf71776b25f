package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jacobarthurs/pgwalk/internal/analyzer"
)

const configFileName = "config.yaml"

var configDirFunc = configDir

// Config overrides analyzer thresholds. Zero values keep the defaults.
type Config struct {
	IndexPolicy         string  `yaml:"index_policy,omitempty"`
	RowEstimateHigh     float64 `yaml:"row_estimate_high,omitempty"`
	RowEstimateLow      float64 `yaml:"row_estimate_low,omitempty"`
	NestedLoopMaxRows   int64   `yaml:"nested_loop_max_rows,omitempty"`
	ExpensiveNodeShare  float64 `yaml:"expensive_node_share,omitempty"`
	HashBatchesCritical int     `yaml:"hash_batches_critical,omitempty"`
	SelectivityMaxPct   float64 `yaml:"selectivity_max_pct,omitempty"`
}

const configTemplate = `# pgwalk configuration
#
# Index suggestion policy:
#   lenient - suggest when removed+returned rows exceed 100,000 (any node)
#   strict  - suggest when removed+returned rows exceed 1,000,000 (scan nodes only)
index_policy: lenient

# Warn when actual/planned rows is above the high ratio or below the low ratio.
row_estimate_high: 5
row_estimate_low: 0.2

# Warn on Nested Loop nodes producing more rows than this.
nested_loop_max_rows: 10000

# Warn when a node takes more than this share of total execution time.
expensive_node_share: 0.6

# Hash spills above this many batches are reported as critical.
hash_batches_critical: 8

# Suggest an index when returned rows are below this percentage of removed rows.
selectivity_max_pct: 15
`

// Load reads the config at path, or the default location when path is
// empty. A missing default config is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &cfg, nil
}

// Thresholds applies the overrides in c on top of the analyzer defaults.
func (c *Config) Thresholds() (analyzer.Thresholds, error) {
	t := analyzer.DefaultThresholds()

	policy, err := analyzer.IndexPolicyByName(c.IndexPolicy)
	if err != nil {
		return t, err
	}
	t.IndexPolicy = policy

	if c.RowEstimateHigh > 0 {
		t.RowEstimateHigh = c.RowEstimateHigh
	}
	if c.RowEstimateLow > 0 {
		t.RowEstimateLow = c.RowEstimateLow
	}
	if c.NestedLoopMaxRows > 0 {
		t.NestedLoopMaxRows = c.NestedLoopMaxRows
	}
	if c.ExpensiveNodeShare > 0 {
		t.ExpensiveNodeShare = c.ExpensiveNodeShare
	}
	if c.HashBatchesCritical > 0 {
		t.HashBatchesCritical = c.HashBatchesCritical
	}
	if c.SelectivityMaxPct > 0 {
		t.SelectivityMaxPct = c.SelectivityMaxPct
	}

	return t, nil
}

// Init writes the commented template to the default location and returns
// its path. An existing file is kept unless force is set.
func Init(force bool) (string, error) {
	if err := ensureConfigDir(); err != nil {
		return "", err
	}

	path, err := configPath()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config %s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return "", fmt.Errorf("writing config %s: %w", path, err)
	}

	return path, nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "pgwalk"), nil
}

func configPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func ensureConfigDir() error {
	dir, err := configDirFunc()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
