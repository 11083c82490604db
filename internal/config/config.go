// Package config loads the optional .schemaexport.yaml project file and the
// environment overrides that apply on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by FindConfig when no file exists up to the
// filesystem root.
var ErrConfigNotFound = errors.New("no .schemaexport.yaml found")

// Environment variables that override the config file.
const (
	EnvSource        = "SCHEMAEXPORT_SOURCE"
	EnvNeo4jUser     = "SCHEMAEXPORT_NEO4J_USER"
	EnvNeo4jPassword = "SCHEMAEXPORT_NEO4J_PASSWORD"
)

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".schemaexport.yaml", ".schemaexport.yml", "schemaexport.yaml"}

// Config represents the .schemaexport.yaml configuration file.
type Config struct {
	// Source is a database URL or a declaration file or directory
	Source string `yaml:"source,omitempty"`

	// Schema is the database schema name (PostgreSQL schema, MySQL database)
	Schema string `yaml:"schema,omitempty"`

	Tables  []string `yaml:"tables,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	// Format of the export command: json or yaml
	Format string `yaml:"format,omitempty"`
	// Output file of the export command; empty writes to stdout
	Output string `yaml:"output,omitempty"`
	// OutputDir of the docs and generate commands
	OutputDir string `yaml:"outputDir,omitempty"`

	// Languages generated when generate runs without --lang
	Languages []string `yaml:"languages,omitempty"`

	Neo4j Neo4jConfig `yaml:"neo4j,omitempty"`
}

// Neo4jConfig holds Neo4j credentials. The URI is the source itself.
type Neo4jConfig struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// Load finds the nearest config file walking up from dir and applies
// environment overrides. Variables from dir/.env apply only where the
// process environment leaves them unset. A missing config file is not an
// error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	path, err := FindConfig(dir)
	switch {
	case err == nil:
		if cfg, err = LoadConfigFile(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	case !errors.Is(err, ErrConfigNotFound):
		return nil, err
	}

	// .env is optional; silently ignore if missing
	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		dotenv = nil
	}

	cfg.ApplyEnv(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})
	return cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}
		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields with the non-empty values returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := getenv(EnvNeo4jUser); v != "" {
		c.Neo4j.Username = v
	}
	if v := getenv(EnvNeo4jPassword); v != "" {
		c.Neo4j.Password = v
	}
}
