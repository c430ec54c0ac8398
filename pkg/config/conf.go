package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/kinfeat/pkg/pipeline"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Config represents app config object.
type Config struct {
	Simplified           bool     `yaml:"simplified"`
	FillIfNotAnySurvived bool     `yaml:"fill_if_not_any_survived"`
	UseFare              bool     `yaml:"use_fare"`
	FamilyFiller         string   `yaml:"family_filler"`
	Titles               []string `yaml:"titles,omitempty"`
	ImputeEmbarked       string   `yaml:"impute_embarked"`
	DB                   string   `yaml:"db,omitempty"`
	LogLevel             string   `yaml:"log_level"`
}

func getDefaultConfig() *Config {
	return &Config{
		FamilyFiller:   pipeline.FillerDefault,
		ImputeEmbarked: "S",
		LogLevel:       "info",
	}
}

// Options returns the engine options held by the config.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Simplified:           c.Simplified,
		FillIfNotAnySurvived: c.FillIfNotAnySurvived,
		UseFare:              c.UseFare,
		Titles:               c.Titles,
		FamilyFiller:         c.FamilyFiller,
	}
}

// Path returns the config file path in dirPath.
func Path(dirPath string) string {
	return filepath.Join(dirPath, configFileName)
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(Path(dirPath), b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := Path(dirPath)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	return Read(path)
}

// Read reads the config file at path. Keys missing from the file keep
// their default values.
func Read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := getDefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
