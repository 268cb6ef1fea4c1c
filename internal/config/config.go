// Package config loads run configuration for intake-recon.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (applied by the caller)
//  2. Environment variables (INTAKE_REFERENCE_PATH, INTAKE_LOG_LEVEL, etc.)
//  3. YAML config file
//  4. Hardcoded defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gyeh/intake-recon/internal/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "INTAKE_"

// Progress modes.
const (
	ProgressBars = "bars"
	ProgressLog  = "log"
	ProgressNone = "none"
)

// Config is the full run configuration.
type Config struct {
	Reference ReferenceConfig `koanf:"reference"`
	Documents DocumentsConfig `koanf:"documents"`
	Output    OutputConfig    `koanf:"output"`
	Log       logging.Config  `koanf:"log"`
	Progress  ProgressConfig  `koanf:"progress"`
	AWS       AWSConfig       `koanf:"aws"`
	Referrer  ReferrerConfig  `koanf:"referrer"`
}

// ReferenceConfig locates the reference dataset.
type ReferenceConfig struct {
	Path   string `koanf:"path"`
	Sheet  string `koanf:"sheet"`
	TmpDir string `koanf:"tmp_dir"`
}

// DocumentsConfig selects the documents to process.
type DocumentsConfig struct {
	Dir        string   `koanf:"dir"`
	ListFile   string   `koanf:"list_file"`
	Extensions []string `koanf:"extensions"`
	StdGzip    bool     `koanf:"std_gzip"`
}

// OutputConfig controls where the report is written.
type OutputConfig struct {
	Path string `koanf:"path"`
}

// ProgressConfig controls progress display.
type ProgressConfig struct {
	Mode string `koanf:"mode"`
}

// AWSConfig configures S3 access.
type AWSConfig struct {
	Region string `koanf:"region"`
}

// ReferrerConfig controls NPI Registry verification of referring physicians.
type ReferrerConfig struct {
	Verify bool   `koanf:"verify"`
	State  string `koanf:"state"`
}

// Load reads the YAML file at path (optional) and then environment
// overrides, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Use rawbytes provider to avoid re-opening the file
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// INTAKE_DOCUMENTS_LIST_FILE -> documents.list_file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		section, field, found := strings.Cut(lower, "_")
		if !found {
			return lower
		}
		return section + "." + field
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := logging.NewDefaultConfig()
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Format
	}
	if len(cfg.Documents.Extensions) == 0 {
		cfg.Documents.Extensions = []string{".pdf", ".txt"}
	}
	for i, e := range cfg.Documents.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		cfg.Documents.Extensions[i] = e
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "results.json"
	}
	if cfg.Progress.Mode == "" {
		cfg.Progress.Mode = ProgressBars
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
	cfg.Referrer.State = strings.ToUpper(strings.TrimSpace(cfg.Referrer.State))
}

// Validate checks config for errors. It is called once flags have been
// applied.
func (c *Config) Validate() error {
	var errs []error

	if c.Reference.Path == "" {
		errs = append(errs, errors.New("reference path is required"))
	}
	if c.Documents.Dir == "" && c.Documents.ListFile == "" {
		errs = append(errs, errors.New("either a documents directory or a documents list file is required"))
	}
	if c.Documents.Dir != "" && c.Documents.ListFile != "" {
		errs = append(errs, errors.New("documents directory and list file are mutually exclusive"))
	}
	switch c.Progress.Mode {
	case ProgressBars, ProgressLog, ProgressNone:
	default:
		errs = append(errs, fmt.Errorf("progress mode must be one of bars, log, none; got %q", c.Progress.Mode))
	}
	if s := c.Referrer.State; s != "" && len(s) != 2 {
		errs = append(errs, fmt.Errorf("referrer state must be a 2-letter code, got %q", s))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}
