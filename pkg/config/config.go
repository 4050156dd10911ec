// Package config provides configuration loading and management for skeletonize3d.
// It handles loading configuration from YAML or TOML files and provides default values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"skeletonize3d/internal/models"
	"skeletonize3d/pkg/stack"
)

// Config represents the application configuration
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores scan for border voxels in parallel
		NumCores int `yaml:"numCores" toml:"num_cores"`

		// Threshold is the gray level above which a slice pixel is foreground
		Threshold int `yaml:"threshold" toml:"threshold"`

		// SliceGap is the z spacing relative to the in-plane voxel size, used
		// for slice views and the STL mesh
		SliceGap float64 `yaml:"sliceGap" toml:"slice_gap"`
	} `yaml:"processing" toml:"processing"`

	// Output parameters
	Output struct {
		// Format of the skeleton: png, tiff, jpeg, binvox or raw
		Format string `yaml:"format" toml:"format"`

		// Codec compresses raw output: none, snappy or zstd
		Codec string `yaml:"codec" toml:"codec"`

		// STL is an optional path for a mesh of the skeleton
		STL string `yaml:"stl" toml:"stl"`

		// ProjectionsDir is an optional directory for projection images
		ProjectionsDir string `yaml:"projectionsDir" toml:"projections_dir"`

		// Verify compares the topology of input and skeleton
		Verify bool `yaml:"verify" toml:"verify"`

		// Verbose enables debug logging and per-pass output
		Verbose bool `yaml:"verbose" toml:"verbose"`
	} `yaml:"output" toml:"output"`

	// Logging parameters
	Logging struct {
		// LogFile is a rotating log file; empty logs to stderr
		LogFile string `yaml:"logFile" toml:"logfile"`

		// MaxSize is the size in megabytes before rotation
		MaxSize int `yaml:"maxSize" toml:"max_log_size"`

		// MaxAge is the number of days rotated files are kept
		MaxAge int `yaml:"maxAge" toml:"max_log_age"`
	} `yaml:"logging" toml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Threshold = 0
	cfg.Processing.SliceGap = 1.0

	// Set default output parameters
	cfg.Output.Format = string(models.FormatPNG)
	cfg.Output.Codec = "zstd"
	cfg.Output.Verbose = false

	// Set default logging parameters
	cfg.Logging.MaxSize = 100
	cfg.Logging.MaxAge = 28

	return cfg
}

// isTOML reports whether path names a TOML file
func isTOML(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".toml"
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if isTOML(configPath) {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the configuration for values the pipeline cannot use
func (c *Config) Validate() error {
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	if c.Processing.Threshold < 0 || c.Processing.Threshold > 255 {
		return fmt.Errorf("threshold must be in [0, 255], got %d", c.Processing.Threshold)
	}
	if c.Processing.SliceGap <= 0 {
		return fmt.Errorf("sliceGap must be positive, got %g", c.Processing.SliceGap)
	}

	switch models.Format(c.Output.Format) {
	case models.FormatPNG, models.FormatTIFF, models.FormatJPEG, models.FormatBinvox, models.FormatRaw:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if _, err := stack.ParseCodec(c.Output.Codec); err != nil {
		return err
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxAge < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}
