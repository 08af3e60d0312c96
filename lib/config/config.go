// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "RESFORGE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local work on a checkout of game data.
	Development Environment = "development"
	// Staging is for rebuilding test copies of shipped archives.
	Staging Environment = "staging"
	// Production is for tooling that writes release archives.
	Production Environment = "production"
)

// Config is the master configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Paths  PathsConfig  `yaml:"paths"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`

	Encryption EncryptionConfig `yaml:"encryption"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths  *PathsConfig  `yaml:"paths,omitempty"`
	Output *OutputConfig `yaml:"output,omitempty"`
	Log    *LogConfig    `yaml:"log,omitempty"`

	Encryption *EncryptionConfig `yaml:"encryption,omitempty"`
}

// PathsConfig locates game data.
type PathsConfig struct {
	// Root is the base directory for relative paths below.
	Root string `yaml:"root"`

	// Archives are FARC files searched in order when resolving
	// dependencies.
	Archives []string `yaml:"archives"`

	// FileDB are GUID map files searched in order.
	FileDB []string `yaml:"filedb"`

	// IndexCache is where dependency-walk annotations are cached.
	IndexCache string `yaml:"index_cache"`
}

// OutputConfig selects the format written by rebuilding commands.
type OutputConfig struct {
	// Revision is the target head word, e.g. "0x272" or "0x3e2".
	Revision string `yaml:"revision"`

	// BranchDescriptor is branchID<<16 | branchRevision, zero for
	// mainline.
	BranchDescriptor uint32 `yaml:"branch_descriptor"`

	// Compression is "all", "none", or "auto" to derive it from the
	// revision.
	Compression string `yaml:"compression"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// EncryptionConfig keys the block of encrypted-binary containers.
type EncryptionConfig struct {
	// Key is the 16-byte TEA key as 32 hex digits. Empty selects the
	// built-in key.
	Key string `yaml:"key"`
}

// KeyBytes decodes Key, returning nil when it is empty.
func (e EncryptionConfig) KeyBytes() ([]byte, error) {
	text := strings.TrimSpace(e.Key)
	if text == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(text)
	if err != nil || len(key) != 16 {
		return nil, fmt.Errorf("encryption.key must be 32 hex digits")
	}
	return key, nil
}

// Default returns the configuration used before a file is loaded, and
// by commands run without one.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "resforge")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:       defaultRoot,
			IndexCache: filepath.Join(defaultRoot, "index.cbor"),
		},
		Output: OutputConfig{
			Compression: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the RESFORGE_CONFIG environment
// variable. There is no fallback: if it is not set, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your resforge.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if len(overrides.Paths.Archives) > 0 {
			c.Paths.Archives = overrides.Paths.Archives
		}
		if len(overrides.Paths.FileDB) > 0 {
			c.Paths.FileDB = overrides.Paths.FileDB
		}
		if overrides.Paths.IndexCache != "" {
			c.Paths.IndexCache = overrides.Paths.IndexCache
		}
	}

	if overrides.Output != nil {
		if overrides.Output.Revision != "" {
			c.Output.Revision = overrides.Output.Revision
		}
		// Zero is mainline, so the descriptor is always applied.
		c.Output.BranchDescriptor = overrides.Output.BranchDescriptor
		if overrides.Output.Compression != "" {
			c.Output.Compression = overrides.Output.Compression
		}
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}

	if overrides.Encryption != nil && overrides.Encryption.Key != "" {
		c.Encryption.Key = overrides.Encryption.Key
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// paths, and resolves relative archive and database paths against
// Paths.Root.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"RESFORGE_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["RESFORGE_ROOT"] = c.Paths.Root

	for i, path := range c.Paths.Archives {
		c.Paths.Archives[i] = c.resolve(expandVars(path, vars))
	}
	for i, path := range c.Paths.FileDB {
		c.Paths.FileDB[i] = c.resolve(expandVars(path, vars))
	}
	c.Paths.IndexCache = c.resolve(expandVars(c.Paths.IndexCache, vars))
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Paths.Root == "" {
		return path
	}
	return filepath.Join(c.Paths.Root, path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	compressionValues = []string{"all", "none", "auto"}
	logLevels         = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if c.Output.Revision != "" {
		if _, err := c.Output.Head(); err != nil {
			errs = append(errs, err)
		}
	}

	if !slices.Contains(compressionValues, c.Output.Compression) {
		errs = append(errs, fmt.Errorf("output.compression must be one of: %v", compressionValues))
	}

	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error"))
	}

	if _, err := c.Encryption.KeyBytes(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Head parses Revision as a 32-bit head word. Hex needs a 0x prefix.
func (o OutputConfig) Head() (uint32, error) {
	head, err := strconv.ParseUint(strings.TrimSpace(o.Revision), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("output.revision %q: %w", o.Revision, err)
	}
	return uint32(head), nil
}

// LogLevel returns the configured level, Info when unset or unknown.
func (c *Config) LogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.Log.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

// EnsurePaths creates the directories the configuration writes into.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, filepath.Dir(c.Paths.IndexCache)} {
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
