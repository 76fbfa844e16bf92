package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".airscrape"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .airscrape configuration file.
// Every field is optional; zero values leave the defaults untouched.
type File struct {
	// Airlines replaces the default airline list.
	Airlines []string `yaml:"airlines,omitempty"`

	// URLTemplate replaces the review page URL template.
	URLTemplate string `yaml:"urlTemplate,omitempty"`

	// RobotsURL replaces the robots.txt location.
	RobotsURL string `yaml:"robotsURL,omitempty"`

	// DataDir replaces the data directory.
	DataDir string `yaml:"dataDir,omitempty"`

	// MaxReviews replaces the per-page record cap.
	MaxReviews int `yaml:"maxReviews,omitempty"`

	// Delay is a Go duration string such as "5s" or "500ms".
	Delay string `yaml:"delay,omitempty"`

	// DelayKeywords replaces the delay complaint terms.
	DelayKeywords []string `yaml:"delayKeywords,omitempty"`

	// Stopwords replaces the built-in English stop-word list.
	Stopwords []string `yaml:"stopwords,omitempty"`

	// UserAgent replaces the HTTP User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// LoadConfigFile loads a configuration file from path.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply merges every non-zero field of the file onto cfg.
func (cf *File) Apply(cfg *Config) error {
	overlay := Config{
		Airlines:      slices.Clone(cf.Airlines),
		URLTemplate:   cf.URLTemplate,
		RobotsURL:     cf.RobotsURL,
		DataDir:       cf.DataDir,
		MaxReviews:    cf.MaxReviews,
		DelayKeywords: slices.Clone(cf.DelayKeywords),
		Stopwords:     slices.Clone(cf.Stopwords),
		UserAgent:     cf.UserAgent,
	}
	if err := mergo.Merge(cfg, overlay, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge configuration: %w", err)
	}

	// "0" is a valid delay, so it cannot go through the zero-skipping merge.
	if cf.Delay != "" {
		d, err := time.ParseDuration(cf.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", cf.Delay, err)
		}
		cfg.ExtractDelay = d
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .airscrape in the current directory
// 3. Look for .airscrape in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
