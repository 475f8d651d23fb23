// Package config loads the advisory module's configuration: the JSON config
// file with environment overrides, and the YAML rule bundle holding the rule
// nodes and their cost schedule.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/nikogura/cost-counsel/pkg/gaps"
	"github.com/nikogura/cost-counsel/pkg/matching"
	"github.com/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Module      string          `json:"module" validate:"required"`
	NodesFile   string          `json:"nodes_file" validate:"required"`
	Weights     WeightsConfig   `json:"weights"`
	Matching    MatchingConfig  `json:"matching"`
	Anthropic   AnthropicConfig `json:"anthropic"`
	MaxAttempts int             `json:"max_attempts" validate:"gte=0"`
}

// WeightsConfig holds the six dimension weights. All zero means use the
// standard distribution.
type WeightsConfig struct {
	What     float64 `json:"what" validate:"gte=0"`
	Which    float64 `json:"which" validate:"gte=0"`
	IfThen   float64 `json:"if_then" validate:"gte=0"`
	Modality float64 `json:"modality" validate:"gte=0"`
	Given    float64 `json:"given" validate:"gte=0"`
	Why      float64 `json:"why" validate:"gte=0"`
}

// MatchingConfig holds the thresholds of the matching and gap layers.
type MatchingConfig struct {
	MatchThreshold        float64  `json:"match_threshold" validate:"gte=0,lte=1"`
	CompletenessThreshold float64  `json:"completeness_threshold" validate:"gte=0,lte=1"`
	TieMargin             float64  `json:"tie_margin" validate:"gte=0,lte=1"`
	RequiredFields        []string `json:"required_fields"`
}

// AnthropicConfig holds the explanation generator settings. An empty API key
// disables generation; answers then use the deterministic rendering.
type AnthropicConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

// EngineWeights converts the configured weights to engine weights, falling
// back to the standard distribution when none are set.
func (c *Config) EngineWeights() (weights matching.Weights) {
	weights = matching.Weights{
		What:     c.Weights.What,
		Which:    c.Weights.Which,
		IfThen:   c.Weights.IfThen,
		Modality: c.Weights.Modality,
		Given:    c.Weights.Given,
		Why:      c.Weights.Why,
	}
	if weights.Sum() == 0 {
		weights = matching.DefaultWeights()
	}
	return weights
}

// GapConfig converts the configured thresholds to a gap evaluator config.
func (c *Config) GapConfig() (cfg gaps.Config) {
	cfg = gaps.Config{
		CompletenessThreshold: c.Matching.CompletenessThreshold,
		TieMargin:             c.Matching.TieMargin,
		RequiredFields:        c.Matching.RequiredFields,
	}
	return cfg
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return cfg, err
		}
		path = filepath.Join(homeDir, ".cost-counsel", "config.json")
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'cost-counsel init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Parse JSON
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	// Override with environment variable if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.Anthropic.APIKey = apiKey
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present and coherent.
func (c *Config) Validate() (err error) {
	err = validator.New().Struct(c)
	if err != nil {
		err = errors.Wrap(err, "invalid configuration")
		return err
	}

	// Weight coherence is checked here rather than at engine construction so
	// a bad config file fails before any rules are loaded.
	err = c.EngineWeights().Validate()
	if err != nil {
		err = errors.Wrap(err, "invalid dimension weights")
		return err
	}

	// Check nodes file exists
	_, err = os.Stat(c.NodesFile)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("nodes file not found: %s", c.NodesFile)
			return err
		}
		err = errors.Wrapf(err, "failed to stat nodes file: %s", c.NodesFile)
		return err
	}

	if c.Matching.MatchThreshold == 0 {
		c.Matching.MatchThreshold = 0.60
	}

	if c.Matching.CompletenessThreshold == 0 {
		c.Matching.CompletenessThreshold = 0.80
	}

	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return err
		}
		path = filepath.Join(homeDir, ".cost-counsel", "config.json")
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultConfig := Config{
		Module:    "order-21-costs",
		NodesFile: filepath.Join(dir, "nodes.yaml"),
		Weights: WeightsConfig{
			What:     0.25,
			Which:    0.20,
			IfThen:   0.25,
			Modality: 0.15,
			Given:    0.10,
			Why:      0.05,
		},
		Matching: MatchingConfig{
			MatchThreshold:        0.60,
			CompletenessThreshold: 0.80,
			TieMargin:             0.10,
			RequiredFields:        []string{"case_type"},
		},
		Anthropic: AnthropicConfig{
			APIKey: "sk-ant-api03-...",
		},
		MaxAttempts: 3,
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
