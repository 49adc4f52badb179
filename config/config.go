// Package config provides configuration for the lifepath server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort int `env:"LIFEPATH_HTTP_PORT" envDefault:"8080"`

	// Database
	DatabaseURL string `env:"LIFEPATH_DATABASE_URL" envDefault:"file:lifepath.db?cache=shared&mode=rwc"`

	// Narrative provider. An empty URL disables the provider; the
	// deterministic builtins then serve every narrative request.
	NarrativeURL      string        `env:"LIFEPATH_NARRATIVE_URL"`
	NarrativeAPIKey   string        `env:"LIFEPATH_NARRATIVE_API_KEY"`
	NarrativeModel    string        `env:"LIFEPATH_NARRATIVE_MODEL" envDefault:"gpt-4o-mini"`
	NarrativeTimeout  time.Duration `env:"LIFEPATH_NARRATIVE_TIMEOUT" envDefault:"20s"`
	NarrativeCooldown time.Duration `env:"LIFEPATH_NARRATIVE_COOLDOWN" envDefault:"60s"`

	// Logging
	LogLevel string `env:"LIFEPATH_LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
