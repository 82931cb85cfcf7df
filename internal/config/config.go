// Package config loads the Traceback server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/traceback/internal/traceback"
)

// Config is the server configuration. Durations use Go syntax ("1h30m").
type Config struct {
	Database  string           `yaml:"database"`
	Addr      string           `yaml:"addr"`
	AdminUser string           `yaml:"admin_user"`
	LogPath   string           `yaml:"log"`
	Sweeper   SweeperConfig    `yaml:"sweeper"`
	Policy    traceback.Policy `yaml:"policy"`
}

// SweeperConfig controls the background expiry sweeper.
type SweeperConfig struct {
	// Interval between sweeps. Zero disables the timer; reads still sweep.
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database:  "traceback.sqlite3",
		Addr:      ":8080",
		AdminUser: "Admin",
		Sweeper:   SweeperConfig{Interval: time.Hour},
		Policy:    traceback.DefaultPolicy(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected. TRACEBACK_DB and TRACEBACK_ADDR override the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TRACEBACK_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("TRACEBACK_ADDR"); v != "" {
		c.Addr = v
	}
}

// Validate checks that the policy is usable.
func (c *Config) Validate() error {
	p := c.Policy
	if c.Database == "" {
		return fmt.Errorf("config: database path is empty")
	}
	if p.CandidateThreshold < 0 || p.CandidateThreshold > 100 {
		return fmt.Errorf("config: candidate_threshold %d outside 0-100", p.CandidateThreshold)
	}
	if p.PromotionThreshold < p.CandidateThreshold || p.PromotionThreshold > 100 {
		return fmt.Errorf("config: promotion_threshold %d must be between candidate_threshold and 100", p.PromotionThreshold)
	}
	for name, d := range map[string]time.Duration{
		"lost_expiry":    p.LostExpiry,
		"found_expiry":   p.FoundExpiry,
		"token_validity": p.TokenValidity,
	} {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	if c.Sweeper.Interval < 0 {
		return fmt.Errorf("config: sweeper interval must not be negative")
	}
	return nil
}
