// Package config loads service configuration from an optional YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Server holds the HTTP service settings.
type Server struct {
	Addr        string  `yaml:"addr"`
	DatabaseURL string  `yaml:"databaseUrl"`
	RedisURL    string  `yaml:"redisUrl"`
	AuthToken   string  `yaml:"authToken"`
	RatePerSec  float64 `yaml:"ratePerSec"`
	RateBurst   int     `yaml:"rateBurst"`
}

// GA holds the default search parameters; requests may override them.
type GA struct {
	Generations int `yaml:"generations"`
	Population  int `yaml:"population"`
	MatingPool  int `yaml:"matingPool"`
}

// Webhook is one endpoint notified when a solve completes.
type Webhook struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

type Config struct {
	Server   Server    `yaml:"server"`
	GA       GA        `yaml:"ga"`
	Webhooks []Webhook `yaml:"webhooks"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080", RatePerSec: 5, RateBurst: 10},
		GA:     GA{Generations: 100, Population: 10, MatingPool: 6},
	}
}

// Load reads the config file at path, falling back to CONFIG_PATH and then
// to config.yaml. A missing default file is not an error; an explicit path
// that cannot be read is. Environment variables PORT, DATABASE_URL,
// REDIS_URL and AUTH_TOKEN override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	default:
		return Config{}, err
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Server.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Server.RedisURL = v
	}
	if v := os.Getenv("AUTH_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	if c.GA.Generations < 1 {
		return fmt.Errorf("ga.generations must be >= 1")
	}
	if c.GA.Population < 2 {
		return fmt.Errorf("ga.population must be >= 2")
	}
	if 2*c.GA.MatingPool <= c.GA.Population {
		return fmt.Errorf("ga.matingPool must exceed half of ga.population")
	}
	if c.GA.MatingPool >= c.GA.Population {
		return fmt.Errorf("ga.matingPool must be smaller than ga.population")
	}
	if c.Server.RatePerSec < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("rate limit settings must be >= 0")
	}
	for i, w := range c.Webhooks {
		if w.URL == "" {
			return fmt.Errorf("webhook %d has no url", i)
		}
	}
	return nil
}
