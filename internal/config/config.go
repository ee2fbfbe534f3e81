package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"taskiq/internal/scoring"
)

// Config models taskiq.yml.
type Config struct {
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Auth struct {
		TokenTTLMinutes int `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`
	Scoring  ScoringConfig   `yaml:"scoring"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// ScoringConfig overrides the size estimator's default weights. The scoring
// section decodes over DefaultWeights, so any weight, cap, urgency band or
// tier bound can be set while omitted fields keep their defaults and a
// minimal taskiq.yml still works.
type ScoringConfig struct {
	weights scoring.Weights
	set     bool
}

func (s *ScoringConfig) UnmarshalYAML(value *yaml.Node) error {
	w := scoring.DefaultWeights()
	if err := value.Decode(&w); err != nil {
		return err
	}
	s.weights = w
	s.set = true
	return nil
}

func (s ScoringConfig) MarshalYAML() (any, error) {
	return s.Weights(), nil
}

func (s ScoringConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Weights())
}

// Weights returns the effective estimator weights.
func (s ScoringConfig) Weights() scoring.Weights {
	if !s.set {
		return scoring.DefaultWeights()
	}
	return s.weights
}

type WebhookConfig struct {
	URL            string   `yaml:"url"`
	Secret         string   `yaml:"secret"`
	Events         []string `yaml:"events"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Enabled        *bool    `yaml:"enabled"`
}

// Weights returns the estimator weights with any configured overrides applied.
func (c *Config) Weights() scoring.Weights {
	return c.Scoring.Weights()
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Auth.TokenTTLMinutes < 0 {
		return fmt.Errorf("config.auth.token_ttl_minutes must not be negative")
	}
	for i, kw := range c.Weights().Keywords {
		if kw == "" {
			return fmt.Errorf("config.scoring.keywords[%d] is empty", i)
		}
	}
	for i, hook := range c.Webhooks {
		if hook.URL == "" {
			return fmt.Errorf("config.webhooks[%d].url is required", i)
		}
		if hook.TimeoutSeconds < 0 {
			return fmt.Errorf("config.webhooks[%d].timeout_seconds must not be negative", i)
		}
	}
	return c.Weights().Validate()
}

// TokenTTLMinutes returns the configured JWT lifetime, defaulting to 30.
func (c *Config) TokenTTLMinutes() int {
	if c.Auth.TokenTTLMinutes > 0 {
		return c.Auth.TokenTTLMinutes
	}
	return 30
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "taskiq.yml")
}

// Load reads and validates config from the workspace, falling back to
// defaults when the file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns default config YAML for taskiq.yml.
func GenerateDefault() string {
	return defaultTemplate
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `server:
  addr: 127.0.0.1:8080
  base_path: /v1

auth:
  token_ttl_minutes: 30

scoring:
  # Size estimator weight table. Every field can be overridden here
  # (duration_max, duration_scale_hours, keyword_max, length_chars_per_point,
  # length_max, urgency_bands, tier_bounds); omitted fields keep their
  # defaults. Keywords are matched against title + description; each distinct
  # match adds keyword_points, capped at keyword_max.
  keywords:
    - integration
    - migration
    - migrate
    - refactor
    - complex
    - algorithm
    - performance
    - security
    - optimization
    - scalability
    - concurrent
    - distributed
    - architecture
  keyword_points: 10
  dependency_bonus: 15

webhooks: []
`
