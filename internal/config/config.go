// Package config loads partidos.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jupaf/partidos/pkg/partidos"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type TablesConfig struct {
	Suffix      string   `yaml:"suffix"`
	Destination string   `yaml:"destination"`
	Roster      string   `yaml:"roster,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
}

type ImportConfig struct {
	Dir string `yaml:"dir"`
}

type ProjectConfig struct {
	Database DatabaseConfig `yaml:"database"`
	Tables   TablesConfig   `yaml:"tables"`
	Import   ImportConfig   `yaml:"import"`
	Timeout  string         `yaml:"timeout"`
}

const ConfigFileName = "partidos.yaml"

// Load reads the config file at path.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDir reads partidos.yaml from dir.
func LoadDir(dir string) (*ProjectConfig, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}

// Apply overlays every field set in the file onto cfg.
func (p *ProjectConfig) Apply(cfg *partidos.Config) error {
	if p.Database.Driver != "" {
		cfg.Driver = p.Database.Driver
	}
	if p.Database.DSN != "" {
		cfg.DSN = p.Database.DSN
	}
	if p.Tables.Suffix != "" {
		cfg.SourceSuffix = p.Tables.Suffix
	}
	if p.Tables.Destination != "" {
		cfg.Destination = p.Tables.Destination
	}
	if p.Tables.Roster != "" {
		cfg.RosterTable = p.Tables.Roster
	}
	if len(p.Tables.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, p.Tables.Exclude...)
	}
	if p.Import.Dir != "" {
		cfg.ImportDir = p.Import.Dir
	}
	if p.Timeout != "" {
		timeout, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", ConfigFileName, errors.Join(partidos.ErrInvalidConfig, err))
		}
		cfg.Timeout = timeout
	}
	return nil
}
