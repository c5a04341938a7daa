package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cloudvars/internal/storage"
)

// Config holds the server configuration.
type Config struct {
	ListenAddr     string
	Policy         storage.Policy
	AllowedOrigins []string
	Debug          bool
}

// Default returns the configuration used when nothing is overridden:
// port 3000, strict ordering, CORS open to all origins.
func Default() Config {
	return Config{
		ListenAddr:     ":3000",
		Policy:         storage.StrictOrdering,
		AllowedOrigins: []string{"*"},
	}
}

// fileConfig mirrors Config for YAML decoding. Absent fields leave the
// existing configuration untouched.
type fileConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Policy     string `yaml:"policy"`
	Origins    string `yaml:"origins"`
	Debug      *bool  `yaml:"debug"`
}

// ApplyFile overlays settings from a YAML file onto c.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.ListenAddr != "" {
		c.ListenAddr = fc.ListenAddr
	}
	if fc.Policy != "" {
		policy, err := ParsePolicy(fc.Policy)
		if err != nil {
			return err
		}
		c.Policy = policy
	}
	if fc.Origins != "" {
		c.AllowedOrigins = ParseOrigins(fc.Origins)
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	return nil
}

// ApplyEnv overlays environment settings onto c. PORT overrides the
// listen port, matching the hosting platforms the server deploys to.
func (c *Config) ApplyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
}

// ParsePolicy parses a conflict policy name: "strict" or "lww".
func ParsePolicy(s string) (storage.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return storage.StrictOrdering, nil
	case "lww":
		return storage.LastWriteWins, nil
	default:
		return 0, fmt.Errorf("invalid policy: %s (expected strict or lww)", s)
	}
}

// ParseOrigins parses a comma-separated list of allowed CORS origins:
// "https://a.example,https://b.example". Empty entries are skipped.
func ParseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		origins = append(origins, part)
	}
	return origins
}
